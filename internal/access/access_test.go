package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blisstech/pharmacy-api/internal/model"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role model.Role
		op   Operation
		want bool
	}{
		{model.RolePharmacist, OpFillPrescription, true},
		{model.RolePharmacist, OpRegisterMedication, true},
		{model.RolePharmacist, OpCreatePatient, true},
		{model.RolePharmacist, OpReadAuditLog, false},
		{model.RoleAdmin, OpReadAuditLog, true},
		{model.RoleAdmin, OpFillPrescription, true},
		{model.Role("technician"), OpFillPrescription, false},
		{model.Role(""), OpCreatePatient, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Can(tt.role, tt.op), "%s / %s", tt.role, tt.op)
	}
}

func TestUnknownOperationDenied(t *testing.T) {
	assert.False(t, Can(model.RoleAdmin, Operation("medication:delete")))
}
