package domain

import "github.com/google/uuid"

// RepoKey identifies a repository mapping. Repo names are only unique within
// a (course, assignment) pair, so all three parts form the key.
type RepoKey struct {
	CourseUID     uuid.UUID
	AssignmentUID uuid.UUID
	Name          string
}

// ProjectInfo is the subset of an upstream project response this layer reads.
type ProjectInfo struct {
	ID     int64
	SSHURL string
}

// GitLab access levels used by the provisioning workflows.
const (
	AccessLevelMaintainer = 40
	AccessLevelOwner      = 50
)
