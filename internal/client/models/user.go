package models

// Role is the account role assigned by the server.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the client's cached copy of a server-owned account.
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Role      Role    `json:"role"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Age       *int    `json:"age,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// IsAdmin reports whether u holds the ADMIN role. A nil user is not an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns "First Last" when known, otherwise the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	var first, last string
	if u.FirstName != nil {
		first = *u.FirstName
	}
	if u.LastName != nil {
		last = *u.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return u.Username
}
