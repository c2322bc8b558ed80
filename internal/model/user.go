package model

// Role is the closed set of session roles. There are no runtime transitions;
// a session keeps the role it was authenticated with.
type Role string

const (
	RolePharmacist Role = "pharmacist"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePharmacist || r == RoleAdmin
}

// User is a terminal login account.
type User struct {
	Base
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
}

// Session is the ephemeral identity attached to every request after
// authentication. It is never persisted.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// LoginRequest carries terminal credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the login result consumed by the terminal UI.
type TokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
