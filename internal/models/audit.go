package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded by mutating operations.
const (
	AuditActionAssignmentCreate   = "ASSIGNMENT_CREATE"
	AuditActionAssignmentUpdate   = "ASSIGNMENT_UPDATE"
	AuditActionAssignmentDelete   = "ASSIGNMENT_DELETE"
	AuditActionAssignmentComplete = "ASSIGNMENT_COMPLETE"
	AuditActionAssignmentCancel   = "ASSIGNMENT_CANCEL"
	AuditActionRotationGenerate   = "ROTATION_GENERATE"
)

// AuditLog captures who did what to which resource.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"user_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  json.RawMessage `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
