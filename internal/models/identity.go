package models

// Identity is the profile the identity provider holds for an account.
type Identity struct {
	ID       string `json:"id" validate:"required,max=128"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// Identity provider webhook event types.
const (
	AuthEventUserCreated = "user.created"
	AuthEventUserUpdated = "user.updated"
	AuthEventUserDeleted = "user.deleted"
)

// AuthEvent is the body of the identity provider webhook.
type AuthEvent struct {
	Type string   `json:"type" validate:"required,oneof=user.created user.updated user.deleted"`
	User Identity `json:"user" validate:"required"`
}
