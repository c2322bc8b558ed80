package model

// Patient is a directory record. The fulfillment core consumes it only as a
// reference id and display name; intake and profile edits live at the edge.
type Patient struct {
	Base
	Name              string  `json:"name" db:"name"`
	BirthDate         Date    `json:"birth_date" db:"birth_date"`
	Phone             string  `json:"phone" db:"phone"`
	Email             *string `json:"email,omitempty" db:"email"`
	Address           *string `json:"address,omitempty" db:"address"`
	City              *string `json:"city,omitempty" db:"city"`
	Province          *string `json:"province,omitempty" db:"province"`
	PostalCode        *string `json:"postal_code,omitempty" db:"postal_code"`
	HealthCardNum     string  `json:"health_card_num" db:"health_card_num"`
	Allergies         *string `json:"allergies,omitempty" db:"allergies"`
	InsuranceProvider *string `json:"insurance_provider,omitempty" db:"insurance_provider"`
	InsuranceID       *string `json:"insurance_id,omitempty" db:"insurance_id"`
}

// CreatePatientRequest is the intake payload.
type CreatePatientRequest struct {
	Name              string  `json:"name" binding:"required"`
	BirthDate         Date    `json:"birth_date" binding:"required"`
	Phone             string  `json:"phone" binding:"required"`
	Email             *string `json:"email" binding:"omitempty,email"`
	Address           *string `json:"address"`
	City              *string `json:"city"`
	Province          *string `json:"province"`
	PostalCode        *string `json:"postal_code"`
	HealthCardNum     string  `json:"health_card_num" binding:"required"`
	Allergies         *string `json:"allergies"`
	InsuranceProvider *string `json:"insurance_provider"`
	InsuranceID       *string `json:"insurance_id"`
}
