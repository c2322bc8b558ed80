package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/blisstech/pharmacy-api/internal/model"
)

// All repository interfaces in one file
type (
	// MedicationRepository is the authoritative stock ledger. AdjustStock is
	// the single point of stock mutation and is usable as an atomic
	// primitive inside a fill transaction.
	MedicationRepository interface {
		Create(ctx context.Context, med *model.Medication) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		GetTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Medication, error)
		// AdjustStock applies delta (positive or negative) and returns the
		// resulting stock. It fails with InsufficientStock, changing
		// nothing, if the result would be negative.
		AdjustStock(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, delta int) (int, error)
		// UpdateMutable writes price and description; stock changes go
		// through AdjustStock.
		UpdateMutable(ctx context.Context, med *model.Medication) error
		List(ctx context.Context, filter *model.MedicationFilter) ([]*model.Medication, error)
		CountLowStock(ctx context.Context, threshold int) (int, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
		// Search is a case-insensitive substring match over patient names
		// and, when joinMedications is set, over the names of medications
		// dispensed to them.
		Search(ctx context.Context, query string, joinMedications bool) ([]*model.Patient, error)
	}

	// PrescriptionRepository is an append-only event log. There are no
	// update or delete operations.
	PrescriptionRepository interface {
		Append(ctx context.Context, tx *sqlx.Tx, rec *model.PrescriptionRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.PrescriptionRecord, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionRecord, error)
		ListAll(ctx context.Context) ([]*model.PrescriptionDetail, error)
	}

	// AuditRepository is an append-only compliance log ordered by sequence
	// number. Entries are never updated or deleted.
	AuditRepository interface {
		Append(ctx context.Context, entry *model.AuditLogEntry) error
		AppendTx(ctx context.Context, tx *sqlx.Tx, entry *model.AuditLogEntry) error
		List(ctx context.Context) ([]*model.AuditLogEntry, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByUsername(ctx context.Context, username string) (*model.User, error)
	}

	OutboxRepository interface {
		CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	}
)
