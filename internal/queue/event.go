// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// VaultAuditEvent is published whenever a vault entry is created, its secret
// replaced, or deleted. It carries enough for downstream audit tooling
// without ever including secret material, encrypted or not.
type VaultAuditEvent struct {
	Action   string `json:"action"` // "save" | "replace" | "delete"
	UserID   uint64 `json:"user_id"`
	EntryID  uint64 `json:"entry_id"`
	Label    string `json:"label"`
	Username string `json:"username"`
	At       string `json:"at"` // RFC 3339 UTC
}
