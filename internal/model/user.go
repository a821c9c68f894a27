package model

// Role constants carried in the session and in user records.
const (
	RoleUser      = "ROLE_USER"
	RoleModerator = "ROLE_MODERATOR"
	RoleAdmin     = "ROLE_ADMIN"
)

// User is an account record as returned by the user management endpoints.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the authenticated identity for the current process.
type Session struct {
	// Token is the opaque bearer credential attached to API requests.
	Token string `json:"token"`

	// Username is the login name of the authenticated user.
	Username string `json:"username"`

	// Role is one of the Role* constants, or empty when the persisted
	// credential's claim could not be decoded.
	Role string `json:"role"`
}
