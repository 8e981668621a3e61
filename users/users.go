package users

import "time"

// Role represents a user role as supplied by the CertiTrack API. The
// set of roles is open ended on the server side, so this is a string
// type rather than a closed enum; RoleUser and RoleAdmin are the two
// values the client recognises.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the profile snapshot returned by the CertiTrack API. It is
// replaced wholesale on every successful login, refresh or profile
// fetch and never patched field by field.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     string     `json:"phone,omitempty"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// IsAdmin returns true if the user carries the administrative role.
// Unknown roles are carried through untouched and simply compare false.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}
