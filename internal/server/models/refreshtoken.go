package models

import "time"

// RefreshToken is a stored, rotating session credential. A refresh
// consumes the row and issues a replacement.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
