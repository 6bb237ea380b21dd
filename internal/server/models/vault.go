package models

import "time"

// Vault is a shared container of sources, scoped by membership.
type Vault struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
