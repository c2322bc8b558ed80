package model

import (
	"time"

	"github.com/google/uuid"
)

// PrescriptionRecord is one completed dispensing event. Records are append
// only: they are created by the fill processor and never updated or deleted.
type PrescriptionRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PatientID      uuid.UUID `json:"patient_id" db:"patient_id"`
	MedicationID   uuid.UUID `json:"medication_id" db:"medication_id"`
	Prescriber     string    `json:"prescriber" db:"prescriber"`
	Sig            string    `json:"sig" db:"sig"`
	Quantity       int       `json:"quantity" db:"quantity"`
	DaysSupply     int       `json:"days_supply" db:"days_supply"`
	Refills        int       `json:"refills" db:"refills"`
	DateFilled     Date      `json:"date_filled" db:"date_filled"`
	NextRefillDate Date      `json:"next_refill_date" db:"next_refill_date"`
	FilledBy       string    `json:"filled_by" db:"filled_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// PrescriptionDetail joins a record with its patient and medication names for
// the due lists and the upcoming-refill queue.
type PrescriptionDetail struct {
	PrescriptionRecord
	PatientName    string `json:"patient_name" db:"patient_name"`
	MedicationName string `json:"medication_name" db:"medication_name"`
}

// FillRequest is a single prescription-fulfillment command. Refills carries
// the post-decrement value to store on the record.
type FillRequest struct {
	PatientID    uuid.UUID `json:"patient_id" binding:"required"`
	MedicationID uuid.UUID `json:"medication_id" binding:"required"`
	Prescriber   string    `json:"prescriber" binding:"required"`
	Sig          string    `json:"sig" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
	DaysSupply   int       `json:"days_supply" binding:"required,min=1"`
	Refills      int       `json:"refills" binding:"min=0"`
	DateFilled   Date      `json:"date_filled" binding:"required"`
}

// NextRefill computes the refill due date for a fill.
func NextRefill(filled Date, daysSupply int) Date {
	return filled.AddDays(daysSupply)
}

// DashboardStats are the aggregates shown on the landing view.
type DashboardStats struct {
	DueToday int `json:"due_today"`
	DueSoon  int `json:"due_soon"`
	LowStock int `json:"low_stock"`
}

// DueFilter selects a refill bucket.
type DueFilter string

const (
	DueFilterToday DueFilter = "today"
	DueFilterSoon  DueFilter = "soon"
)
