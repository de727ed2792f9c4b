package model

// Role names the profile table a login owns.  It is fixed when the login is
// created; switching role means creating a new account.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleTrainer Role = "Trainer"
	RoleMember  Role = "Member"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleMember:
		return true
	}
	return false
}

// Login mirrors the `logins` table.  Email is unique and compared byte for
// byte.  Password holds the bcrypt digest and is never returned to clients.
// AccessKey is the uuid of the current session, nil while logged out.
type Login struct {
	ID        uint64  `json:"id"`
	Email     string  `json:"email"`
	Password  string  `json:"-"`
	Username  string  `json:"username"`
	Role      Role    `json:"role"`
	AccessKey *string `json:"accessKey,omitempty"`
}

// Credential is the caller-supplied part of a login.  PasswordHashed marks
// Password as an existing digest that must be stored as-is; otherwise it is
// plaintext and gets hashed.  An empty Password on update keeps the stored
// digest.
type Credential struct {
	Email          string
	Password       string
	PasswordHashed bool
	Username       string
}
