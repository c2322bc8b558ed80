package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

// Append is a pure insert. Stock validation happened upstream; this store
// knows nothing about the ledger.
func (r *prescriptionRepository) Append(ctx context.Context, tx *sqlx.Tx, rec *model.PrescriptionRecord) error {
	var q sqlx.ExtContext = r.db
	if tx != nil {
		q = tx
	}

	query := `
		INSERT INTO prescriptions (
			id, patient_id, medication_id, prescriber, sig, quantity,
			days_supply, refills, date_filled, next_refill_date, filled_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	rec.CreatedAt = time.Now()

	_, err := q.ExecContext(ctx, query,
		rec.ID,
		rec.PatientID,
		rec.MedicationID,
		rec.Prescriber,
		rec.Sig,
		rec.Quantity,
		rec.DaysSupply,
		rec.Refills,
		rec.DateFilled,
		rec.NextRefillDate,
		rec.FilledBy,
		rec.CreatedAt,
	)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to append prescription: %w", err))
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.PrescriptionRecord, error) {
	var rec model.PrescriptionRecord
	err := r.db.GetContext(ctx, &rec, `SELECT * FROM prescriptions WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("prescription")
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to get prescription: %w", err))
	}
	return &rec, nil
}

func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionRecord, error) {
	query := `SELECT * FROM prescriptions WHERE patient_id = $1 ORDER BY date_filled DESC, created_at DESC`
	var recs []*model.PrescriptionRecord
	if err := r.db.SelectContext(ctx, &recs, query, patientID); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list prescriptions: %w", err))
	}
	return recs, nil
}

func (r *prescriptionRepository) ListAll(ctx context.Context) ([]*model.PrescriptionDetail, error) {
	query := `
		SELECT pr.*, p.name AS patient_name, m.name AS medication_name
		FROM prescriptions pr
		JOIN patients p ON p.id = pr.patient_id
		JOIN medications m ON m.id = pr.medication_id
		ORDER BY pr.next_refill_date ASC, pr.id ASC
	`
	var recs []*model.PrescriptionDetail
	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list prescriptions: %w", err))
	}
	return recs, nil
}
