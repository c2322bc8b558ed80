// Package access maps a session role to the operations it may perform.
// The role set is closed and fixed for a session's lifetime; every privileged
// call goes through Can before touching the ledger, the record store or the
// audit trail.
package access

import (
	"github.com/blisstech/pharmacy-api/internal/model"
)

// Operation names a privileged call on the command surface.
type Operation string

const (
	OpRegisterMedication Operation = "medication:register"
	OpUpdateMedication   Operation = "medication:update"
	OpFillPrescription   Operation = "prescription:fill"
	OpCreatePatient      Operation = "patient:create"
	OpReadAuditLog       Operation = "audit:read"
)

// permissions is the full (role, operation) matrix. Pharmacists run the
// dispensing workflow; only admins may read the audit trail.
var permissions = map[model.Role]map[Operation]bool{
	model.RolePharmacist: {
		OpRegisterMedication: true,
		OpUpdateMedication:   true,
		OpFillPrescription:   true,
		OpCreatePatient:      true,
	},
	model.RoleAdmin: {
		OpRegisterMedication: true,
		OpUpdateMedication:   true,
		OpFillPrescription:   true,
		OpCreatePatient:      true,
		OpReadAuditLog:       true,
	},
}

// Can reports whether role may perform op. Unknown roles are denied.
func Can(role model.Role, op Operation) bool {
	ops, ok := permissions[role]
	return ok && ops[op]
}
