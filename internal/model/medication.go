package model

// Medication is a formulary entry. DIN and NDC identify the drug and are
// immutable after registration; stock is mutated only through the ledger's
// conditional adjustment so it can never go negative.
type Medication struct {
	Base
	Name        string  `json:"name" db:"name"`
	DIN         string  `json:"din" db:"din"`
	NDC         *string `json:"ndc,omitempty" db:"ndc"`
	Description *string `json:"description,omitempty" db:"description"`
	Stock       int     `json:"stock" db:"stock"`
	Price       float64 `json:"price" db:"price"`
	Expiration  Date    `json:"expiration" db:"expiration"`
}

// LowStockThreshold is the stock level below which a medication counts as a
// stock warning on the dashboard.
const LowStockThreshold = 100

// LowStock reports whether the medication is below the reorder threshold.
func (m *Medication) LowStock() bool {
	return m.Stock < LowStockThreshold
}

// RegisterMedicationRequest creates a formulary entry.
type RegisterMedicationRequest struct {
	Name        string  `json:"name" binding:"required"`
	DIN         string  `json:"din" binding:"required,din"`
	NDC         *string `json:"ndc"`
	Description *string `json:"description"`
	Stock       int     `json:"stock" binding:"min=0"`
	Price       float64 `json:"price" binding:"min=0"`
	Expiration  Date    `json:"expiration" binding:"required"`
}

// UpdateMedicationRequest is a partial update of mutable fields. Identity
// fields (DIN, NDC) are deliberately absent; requests carrying them are
// rejected before binding.
type UpdateMedicationRequest struct {
	Stock       *int     `json:"stock" binding:"omitempty,min=0"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Description *string  `json:"description"`
}

// MedicationFilter narrows list results.
type MedicationFilter struct {
	Query    string `form:"q"`
	LowStock bool   `form:"low_stock"`
}
