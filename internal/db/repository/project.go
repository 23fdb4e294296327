package repository

import (
	"context"
	"database/sql"

	"classlab/internal/domain"
)

var _ domain.ProjectStore = (*ProjectRepo)(nil)

// ProjectRepo implements domain.ProjectStore on the project_ids table.
type ProjectRepo struct {
	db *sql.DB
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Lookup returns the upstream project ID for a repo key.
func (r *ProjectRepo) Lookup(ctx context.Context, key domain.RepoKey) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT project_id FROM project_ids WHERE course_uid = ? AND assignment_uid = ? AND name = ?`,
		key.CourseUID.String(), key.AssignmentUID.String(), key.Name).Scan(&id)
	if err != nil {
		return 0, mapDBError(err)
	}
	return id, nil
}

// Insert records a repo mapping. The composite primary key makes a concurrent
// duplicate insert surface as ConflictError rather than a raw driver error,
// which is what the creation workflow's idempotency check relies on.
func (r *ProjectRepo) Insert(ctx context.Context, key domain.RepoKey, projectID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_ids (course_uid, assignment_uid, name, project_id) VALUES (?, ?, ?, ?)`,
		key.CourseUID.String(), key.AssignmentUID.String(), key.Name, projectID)
	return mapDBError(err)
}

// RemoveByProjectID deletes the mapping holding the given upstream ID.
func (r *ProjectRepo) RemoveByProjectID(ctx context.Context, projectID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM project_ids WHERE project_id = ?`, projectID)
	return requireRow(res, err)
}
