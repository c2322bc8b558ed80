package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

// The seq column is a bigserial: the database is the single ordering point,
// so concurrent appends never collide. The table has no update or delete
// statements anywhere in this codebase.
func (r *auditRepository) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	return r.append(ctx, r.db, entry)
}

func (r *auditRepository) AppendTx(ctx context.Context, tx *sqlx.Tx, entry *model.AuditLogEntry) error {
	return r.append(ctx, tx, entry)
}

func (r *auditRepository) append(ctx context.Context, q sqlx.ExtContext, entry *model.AuditLogEntry) error {
	query := `
		INSERT INTO audit_logs (actor, action, subject, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`
	entry.CreatedAt = time.Now()

	err := sqlx.GetContext(ctx, q, &entry.Seq, query,
		entry.Actor,
		entry.Action,
		entry.Subject,
		entry.Detail,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to append audit entry: %w", err))
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context) ([]*model.AuditLogEntry, error) {
	var entries []*model.AuditLogEntry
	err := r.db.SelectContext(ctx, &entries, `SELECT * FROM audit_logs ORDER BY seq ASC`)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list audit entries: %w", err))
	}
	return entries, nil
}
