package audit

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blisstech/pharmacy-api/internal/model"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

type memoryAuditRepo struct {
	entries []*model.AuditLogEntry
}

func (m *memoryAuditRepo) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	entry.Seq = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAuditRepo) AppendTx(ctx context.Context, tx *sqlx.Tx, entry *model.AuditLogEntry) error {
	return m.Append(ctx, entry)
}

func (m *memoryAuditRepo) List(ctx context.Context) ([]*model.AuditLogEntry, error) {
	return m.entries, nil
}

func TestRecordAssignsAscendingSeq(t *testing.T) {
	repo := &memoryAuditRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "mchen", model.AuditActionFillPrescription, "medication:x", "first"))
	require.NoError(t, svc.Record(ctx, "mchen", model.AuditActionFillPrescription, "medication:y", "second"))

	entries, err := svc.List(ctx, model.Session{Username: "akaur", Role: model.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Less(t, entries[0].Seq, entries[1].Seq)
	assert.Equal(t, "first", entries[0].Detail)
}

func TestList_AdminOnly(t *testing.T) {
	repo := &memoryAuditRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.List(ctx, model.Session{Username: "mchen", Role: model.RolePharmacist})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	// The denied attempt itself lands on the trail.
	require.Len(t, repo.entries, 1)
	assert.Equal(t, model.AuditActionDeniedAccess, repo.entries[0].Action)
	assert.Equal(t, "mchen", repo.entries[0].Actor)
}

func TestDeniedAccessSwallowsRepoFailure(t *testing.T) {
	svc := NewService(failingAuditRepo{})

	// Must not panic or surface the storage error.
	svc.DeniedAccess(context.Background(), "mchen", "audit_log.read")
}

type failingAuditRepo struct{}

func (failingAuditRepo) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	return apperrors.Storage(assert.AnError)
}

func (failingAuditRepo) AppendTx(ctx context.Context, tx *sqlx.Tx, entry *model.AuditLogEntry) error {
	return apperrors.Storage(assert.AnError)
}

func (failingAuditRepo) List(ctx context.Context) ([]*model.AuditLogEntry, error) {
	return nil, apperrors.Storage(assert.AnError)
}
