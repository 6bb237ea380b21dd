package models

import "time"

// Audit actions recorded for privileged mutations.
const (
	AuditVaultCreated       = "vault_created"
	AuditVaultUpdated       = "vault_updated"
	AuditVaultDeleted       = "vault_deleted"
	AuditMemberAdded        = "member_added"
	AuditMemberRemoved      = "member_removed"
	AuditMemberRoleChanged  = "member_role_changed"
	AuditSourceAdded        = "source_added"
	AuditSourceUpdated      = "source_updated"
	AuditSourceDeleted      = "source_deleted"
	AuditSourcesBulkDeleted = "sources_bulk_deleted"
	AuditFileUploaded       = "file_uploaded"
	AuditAnnotationAdded    = "annotation_added"
	AuditCommentAdded       = "comment_added"
)

// AuditLogEntry is an append-only record of a privileged mutation.
// Immutable once written; listed in created_at descending order.
// Metadata is observational only and never used for authorization.
type AuditLogEntry struct {
	ID        string
	VaultID   string
	UserID    string // empty when the actor is unknown (stored as NULL)
	Action    string
	Metadata  map[string]any
	CreatedAt time.Time
}
