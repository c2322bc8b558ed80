package model

import (
	"github.com/google/uuid"
)

// FillCommand is the short-lived hand-off from the dashboard's "process this
// refill" action to the fulfillment form. A staged command is claimed exactly
// once; claiming clears it.
type FillCommand struct {
	Ticket       uuid.UUID `json:"ticket"`
	PatientID    uuid.UUID `json:"patient_id"`
	PatientName  string    `json:"patient_name"`
	MedicationID uuid.UUID `json:"medication_id"`
	Prescriber   string    `json:"prescriber"`
	Sig          string    `json:"sig"`
	Quantity     int       `json:"quantity"`
	DaysSupply   int       `json:"days_supply"`
	Refills      int       `json:"refills"`
}

// StageFillRequest stages a FillCommand from a prior prescription record.
type StageFillRequest struct {
	PrescriptionID uuid.UUID `json:"prescription_id" binding:"required"`
}
