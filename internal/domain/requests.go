package domain

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// CreateGroupRequest carries the input for course and assignment creation.
// Both map to GitLab groups; assignments additionally name their parent course.
type CreateGroupRequest struct {
	Name string    `json:"name"`
	UUID uuid.UUID `json:"uuid"`
}

func (r CreateGroupRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.UUID, validation.By(requireUUID)),
	)
	if err != nil {
		return ErrValidation("%s", err.Error())
	}
	return nil
}

// CreateRepoRequest carries the input for repository creation. Owners are
// resolved to upstream user IDs before any mutating call. ExpiresAt applies
// to every owner's maintainer membership (GitLab "expires_at", YYYY-MM-DD).
type CreateRepoRequest struct {
	Owners         []string `json:"owners"`
	RepoName       string   `json:"repo_name"`
	ExpiresAt      string   `json:"ddl"`
	AdditionalData *string  `json:"additional_data,omitempty"`
}

func (r CreateRepoRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Owners, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.RepoName, validation.Required),
	)
	if err != nil {
		return ErrValidation("%s", err.Error())
	}
	return nil
}

// AddInstructorRequest names a registered user to be granted owner access on
// a course group.
type AddInstructorRequest struct {
	InstructorName string `json:"instructor_name"`
}

func (r AddInstructorRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.InstructorName, validation.Required),
	); err != nil {
		return ErrValidation("%s", err.Error())
	}
	return nil
}

// CreateUserRequest carries the input for upstream account creation. The
// GitLab username and display name are derived from the email local part.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r CreateUserRequest) Validate() error {
	if len(r.Password) < 8 {
		return ErrValidation("Password too short (len<8)")
	}
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	); err != nil {
		return ErrValidation("Invalid email")
	}
	if r.Username() == "admin" {
		return ErrValidation("Invalid email")
	}
	return nil
}

// Username returns the email local part, which doubles as the upstream
// username and display name.
func (r CreateUserRequest) Username() string {
	at := strings.IndexByte(r.Email, '@')
	if at < 0 {
		return ""
	}
	return r.Email[:at]
}

// UpdateKeyRequest carries the single SSH key that replaces all of a user's
// existing upstream keys.
type UpdateKeyRequest struct {
	Key string `json:"key"`
}

func (r UpdateKeyRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required),
	); err != nil {
		return ErrValidation("%s", err.Error())
	}
	return nil
}

func requireUUID(value interface{}) error {
	uid, ok := value.(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}
