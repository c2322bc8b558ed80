package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Integration event types published by the relay worker.
const (
	EventDispenseRecorded = "DISPENSE_RECORDED"
	EventStockLow         = "STOCK_LOW"
)

// OutboxEvent is written in the same transaction as the domain change it
// describes and relayed to the broker asynchronously.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// DispenseEvent is the payload of a DISPENSE_RECORDED event.
type DispenseEvent struct {
	PrescriptionID uuid.UUID `json:"prescription_id"`
	MedicationID   uuid.UUID `json:"medication_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	Quantity       int       `json:"quantity"`
	StockAfter     int       `json:"stock_after"`
	FilledBy       string    `json:"filled_by"`
}

// StockLowEvent is the payload of a STOCK_LOW event, emitted when a fill
// drops a medication below the reorder threshold.
type StockLowEvent struct {
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	Stock          int       `json:"stock"`
	Threshold      int       `json:"threshold"`
}
