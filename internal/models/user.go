package models

import (
	"time"
)

// RoleAdmin is the only role allowed to list and update leads.
const RoleAdmin = "admin"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
