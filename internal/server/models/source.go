package models

import "time"

// Source is a reference stored in a vault: a titled link, optionally with
// an uploaded document in object storage (FilePath is its storage key).
type Source struct {
	ID        string
	VaultID   string
	Title     string
	URL       string
	FilePath  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
