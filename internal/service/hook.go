package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"classlab/internal/domain"
)

// HookService relays authenticated push callbacks to the backend.
type HookService struct {
	forwarder domain.EventForwarder
	logger    *slog.Logger
}

// NewHookService creates a new HookService.
func NewHookService(forwarder domain.EventForwarder, logger *slog.Logger) *HookService {
	return &HookService{forwarder: forwarder, logger: logger}
}

// ForwardPush sends one push notification to the backend. gitSSHURL is the
// clone URL reported by the upstream payload; additionalData is the opaque
// value baked into the hook URL at repository creation, if any.
func (s *HookService) ForwardPush(ctx context.Context, courseUID, assignmentUID uuid.UUID, gitSSHURL string, additionalData *string) error {
	evt := domain.PushEvent{
		CourseUID:      courseUID.String(),
		AssignmentUID:  assignmentUID.String(),
		Upstream:       gitSSHURL,
		AdditionalData: additionalData,
	}
	if err := s.forwarder.ForwardPush(ctx, evt); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "push event forwarded",
		"course_uuid", courseUID, "assignment_uuid", assignmentUID)
	return nil
}
