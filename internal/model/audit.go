package model

import (
	"time"
)

// Audit action kinds. Every stock-affecting or privileged call appends
// exactly one entry; denied attempts are part of the record too.
const (
	AuditActionRegisterMedication = "RegisterMedication"
	AuditActionUpdateMedication   = "UpdateMedication"
	AuditActionFillPrescription   = "FillPrescription"
	AuditActionFillDenied         = "FillDenied"
	AuditActionCreatePatient      = "CreatePatient"
	AuditActionLogin              = "Login"
	AuditActionDeniedAccess       = "DeniedAccess"
)

// AuditLogEntry is an immutable compliance record. Seq is assigned by the
// store's single ordering point; entries are totally ordered by it.
type AuditLogEntry struct {
	Seq       int64     `json:"seq" db:"seq"`
	Actor     string    `json:"actor" db:"actor"`
	Action    string    `json:"action" db:"action"`
	Subject   string    `json:"subject" db:"subject"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
