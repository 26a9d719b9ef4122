package domain

import "time"

// User is the domain model for people tickets can be assigned to. Username
// and email are unique across all users; the database enforces both.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
