package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

type medicationRepository struct {
	BaseRepository
}

func NewMedicationRepository(base BaseRepository) repository.MedicationRepository {
	return &medicationRepository{base}
}

func (r *medicationRepository) Create(ctx context.Context, med *model.Medication) error {
	query := `
		INSERT INTO medications (id, name, din, ndc, description, stock, price, expiration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	med.CreatedAt = time.Now()
	med.UpdatedAt = med.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		med.ID,
		med.Name,
		med.DIN,
		med.NDC,
		med.Description,
		med.Stock,
		med.Price,
		med.Expiration,
		med.CreatedAt,
		med.UpdatedAt,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperrors.DuplicateIdentifier(med.DIN)
	}
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to create medication: %w", err))
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	return r.get(ctx, r.db, id)
}

func (r *medicationRepository) GetTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Medication, error) {
	return r.get(ctx, tx, id)
}

func (r *medicationRepository) get(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*model.Medication, error) {
	var med model.Medication
	err := sqlx.GetContext(ctx, q, &med, `SELECT * FROM medications WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("medication")
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to get medication: %w", err))
	}
	return &med, nil
}

// AdjustStock applies delta through a conditional update so the database
// serializes concurrent adjustments to the same row and a result below zero
// is impossible. Zero rows affected with the row present means the guard
// failed: the caller sees InsufficientStock with the stock it lost to.
func (r *medicationRepository) AdjustStock(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, delta int) (int, error) {
	var q sqlx.ExtContext = r.db
	if tx != nil {
		q = tx
	}

	query := `
		UPDATE medications
		SET stock = stock + $1, updated_at = $2
		WHERE id = $3 AND stock + $1 >= 0
		RETURNING stock
	`
	var newStock int
	err := sqlx.GetContext(ctx, q, &newStock, query, delta, time.Now(), id)
	if err == nil {
		return newStock, nil
	}
	if err != sql.ErrNoRows {
		return 0, apperrors.Storage(fmt.Errorf("failed to adjust stock: %w", err))
	}

	med, getErr := r.get(ctx, q, id)
	if getErr != nil {
		return 0, getErr
	}
	return med.Stock, apperrors.InsufficientStock(-delta, med.Stock)
}

// UpdateMutable writes price and description. DIN and NDC never appear in
// the statement, so identity cannot drift post-creation; stock only moves
// through AdjustStock, so a concurrent dispense is never overwritten.
func (r *medicationRepository) UpdateMutable(ctx context.Context, med *model.Medication) error {
	query := `
		UPDATE medications
		SET price = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, med.Price, med.Description, time.Now(), med.ID)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to update medication: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("medication")
	}
	return nil
}

func (r *medicationRepository) List(ctx context.Context, filter *model.MedicationFilter) ([]*model.Medication, error) {
	query := `SELECT * FROM medications WHERE 1=1`
	var args []interface{}

	if filter != nil && filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR din ILIKE $%d)", len(args), len(args))
	}
	if filter != nil && filter.LowStock {
		args = append(args, model.LowStockThreshold)
		query += fmt.Sprintf(" AND stock < $%d", len(args))
	}
	query += " ORDER BY name ASC"

	var meds []*model.Medication
	if err := r.db.SelectContext(ctx, &meds, query, args...); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list medications: %w", err))
	}
	return meds, nil
}

func (r *medicationRepository) CountLowStock(ctx context.Context, threshold int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM medications WHERE stock < $1`, threshold)
	if err != nil {
		return 0, apperrors.Storage(fmt.Errorf("failed to count low stock: %w", err))
	}
	return count, nil
}
