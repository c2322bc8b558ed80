package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, birth_date, phone, email, address, city, province,
			postal_code, health_card_num, allergies, insurance_provider,
			insurance_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.BirthDate,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.City,
		patient.Province,
		patient.PostalCode,
		patient.HealthCardNum,
		patient.Allergies,
		patient.InsuranceProvider,
		patient.InsuranceID,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperrors.DuplicateIdentifier(patient.HealthCardNum)
	}
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to create patient: %w", err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, `SELECT * FROM patients WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to get patient: %w", err))
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, `SELECT * FROM patients ORDER BY name ASC`)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list patients: %w", err))
	}
	return patients, nil
}

// Search matches by substring only, case-insensitive. With joinMedications a
// patient also matches when any medication ever dispensed to them matches.
func (r *patientRepository) Search(ctx context.Context, query string, joinMedications bool) ([]*model.Patient, error) {
	if query == "" {
		return r.List(ctx)
	}

	stmt := `SELECT DISTINCT p.* FROM patients p`
	if joinMedications {
		stmt += `
			LEFT JOIN prescriptions pr ON pr.patient_id = p.id
			LEFT JOIN medications m ON m.id = pr.medication_id
		`
	}
	stmt += ` WHERE p.name ILIKE $1`
	if joinMedications {
		stmt += ` OR m.name ILIKE $1`
	}
	stmt += ` ORDER BY p.name ASC`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, stmt, "%"+query+"%"); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to search patients: %w", err))
	}
	return patients, nil
}
