package models

import "time"

// Role is the sole authorization unit: a fixed three-level lattice.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleContributor Role = "contributor"
	RoleViewer      Role = "viewer"

	// RoleNone means the user has no membership in the vault. It is never
	// persisted and never cached.
	RoleNone Role = ""
)

// Valid reports whether r is one of the three persistable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleContributor, RoleViewer:
		return true
	}
	return false
}

// Membership is the durable grant of a role to a user for a vault.
// Unique on (VaultID, UserID); exactly one owner row exists per vault.
type Membership struct {
	ID        string
	VaultID   string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// MemberWithEmail is a membership joined with the member's account email,
// for display in the collaborators list.
type MemberWithEmail struct {
	Membership
	Email string
}
