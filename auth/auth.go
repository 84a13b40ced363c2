// Package auth holds user accounts and role checks. Credentials are
// stored and compared as given; the single-operator deployment keeps
// them out of scope for hashing.
package auth

// Role gates destructive drug operations.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleClerk Role = "clerk"
)

// User is one account. Username is the unique key.
type User struct {
	Username string
	Password string
	Role     Role
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Authenticate finds the user with exactly matching credentials.
func Authenticate(users []User, username, password string) (User, bool) {
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u, true
		}
	}
	return User{}, false
}

// DefaultAdmin is the account seeded into an empty user store so a
// fresh install can log in at all. Change it after first login.
func DefaultAdmin() User {
	return User{Username: "admin", Password: "admin", Role: RoleAdmin}
}
