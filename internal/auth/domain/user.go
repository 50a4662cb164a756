package domain

import "time"

// User is a directory entry. The session core only reads it.
type User struct {
	ID             string
	Email          string
	PasswordHash   string // argon2 PHC string
	FirstName      string
	LastName       string
	OrganizationID string
	Level          string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal is the authenticated identity tokens are issued for. Subject is
// the user id; the rest is copied into access token claims as-is.
type Principal struct {
	Subject        string
	FirstName      string
	LastName       string
	OrganizationID string
	Level          string
	Role           string
}

// Principal returns the principal for u.
func (u User) Principal() Principal {
	return Principal{
		Subject:        u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		OrganizationID: u.OrganizationID,
		Level:          u.Level,
		Role:           u.Role,
	}
}
