// Package service implements the orchestration workflows that tie the
// identity store and the upstream GitLab API together.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"classlab/internal/domain"
)

// CourseService manages course and assignment groups. Each workflow runs its
// upstream calls in a fixed order and never rolls back completed steps: a
// mid-workflow failure can leave an upstream resource without a local mapping
// (or the reverse), which is reconciled manually.
type CourseService struct {
	groups   domain.GroupStore
	users    domain.UserStore
	upstream domain.Upstream
	logger   *slog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(groups domain.GroupStore, users domain.UserStore, upstream domain.Upstream, logger *slog.Logger) *CourseService {
	return &CourseService{groups: groups, users: users, upstream: upstream, logger: logger}
}

// CreateCourse creates a top-level upstream group and records its mapping.
func (s *CourseService) CreateCourse(ctx context.Context, req domain.CreateGroupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	groupID, err := s.upstream.CreateGroup(ctx, req.Name, nil)
	if err != nil {
		return err
	}
	if err := s.groups.Insert(ctx, req.UUID, groupID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "course created", "uuid", req.UUID, "group_id", groupID)
	return nil
}

// DeleteCourse removes a course group upstream along with the local mappings
// of the course and its assignment sub-groups. Sub-group mappings are removed
// first; the upstream delete cascades over the sub-groups itself.
func (s *CourseService) DeleteCourse(ctx context.Context, courseUID uuid.UUID) error {
	groupID, err := s.groups.Lookup(ctx, courseUID)
	if err != nil {
		return err
	}

	subIDs, err := s.upstream.ListSubgroupIDs(ctx, groupID)
	if err != nil {
		return err
	}
	for _, id := range subIDs {
		if err := ignoreNotFound(s.groups.RemoveByGroupID(ctx, id)); err != nil {
			return err
		}
	}

	if err := s.upstream.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	if err := ignoreNotFound(s.groups.RemoveByGroupID(ctx, groupID)); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "course deleted", "uuid", courseUID, "group_id", groupID)
	return nil
}

// CreateAssignment creates an upstream sub-group under the course's group and
// records its mapping.
func (s *CourseService) CreateAssignment(ctx context.Context, courseUID uuid.UUID, req domain.CreateGroupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	parentID, err := s.groups.Lookup(ctx, courseUID)
	if err != nil {
		return err
	}
	groupID, err := s.upstream.CreateGroup(ctx, req.Name, &parentID)
	if err != nil {
		return err
	}
	if err := s.groups.Insert(ctx, req.UUID, groupID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "assignment created",
		"uuid", req.UUID, "course_uuid", courseUID, "group_id", groupID)
	return nil
}

// DeleteAssignment removes an assignment sub-group upstream and its mapping.
func (s *CourseService) DeleteAssignment(ctx context.Context, assignmentUID uuid.UUID) error {
	groupID, err := s.groups.Lookup(ctx, assignmentUID)
	if err != nil {
		return err
	}
	if err := s.upstream.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	return ignoreNotFound(s.groups.RemoveByGroupID(ctx, groupID))
}

// AddInstructor grants a registered user owner access on a course group.
func (s *CourseService) AddInstructor(ctx context.Context, courseUID uuid.UUID, req domain.AddInstructorRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	groupID, err := s.groups.Lookup(ctx, courseUID)
	if err != nil {
		return err
	}
	userID, err := s.users.Lookup(ctx, req.InstructorName)
	if err != nil {
		return err
	}
	return s.upstream.AddGroupMember(ctx, groupID, userID, domain.AccessLevelOwner)
}

// ignoreNotFound tolerates deleting a mapping that is already gone. Deletion
// workflows use it so a sub-group without a local mapping, or a concurrent
// removal, does not abort the rest of the cleanup.
func ignoreNotFound(err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nil
	}
	return err
}
