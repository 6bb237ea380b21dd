package models

// ChangeEvent is a transient row-change notification emitted by the store's
// change feed. It is relayed to subscribed clients and never persisted.
type ChangeEvent struct {
	Table     string `json:"table"`
	Operation string `json:"op"` // insert, update or delete
	VaultID   string `json:"vault_id"`
}
