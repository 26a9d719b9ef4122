package domain

// Role classifies an authenticated caller for access-control decisions.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)
