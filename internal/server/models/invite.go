package models

import "time"

// Invite is a pending, unconsumed grant keyed by email. Unique on
// (VaultID, Email); a later invite for the same email overwrites the
// pending role. Converted to a Membership on matching sign-in and then
// deleted.
type Invite struct {
	ID        string
	VaultID   string
	Email     string
	Role      Role
	CreatedAt time.Time
}
