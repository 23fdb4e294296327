package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"classlab/internal/domain"
)

var _ domain.GroupStore = (*GroupRepo)(nil)

// GroupRepo implements domain.GroupStore on the group_ids table. The space is
// shared by courses and assignments: both are GitLab groups.
type GroupRepo struct {
	db *sql.DB
}

// NewGroupRepo creates a new GroupRepo.
func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// Lookup returns the upstream group ID for a course or assignment UUID.
func (r *GroupRepo) Lookup(ctx context.Context, uid uuid.UUID) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT group_id FROM group_ids WHERE uuid = ?`, uid.String()).Scan(&id)
	if err != nil {
		return 0, mapDBError(err)
	}
	return id, nil
}

// Insert records a UUID mapping.
func (r *GroupRepo) Insert(ctx context.Context, uid uuid.UUID, groupID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_ids (uuid, group_id) VALUES (?, ?)`, uid.String(), groupID)
	return mapDBError(err)
}

// RemoveByGroupID deletes the mapping holding the given upstream ID. Removal
// by external ID is deliberate: course deletion only learns sub-group IDs
// from the upstream listing, never their UUIDs.
func (r *GroupRepo) RemoveByGroupID(ctx context.Context, groupID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM group_ids WHERE group_id = ?`, groupID)
	return requireRow(res, err)
}
