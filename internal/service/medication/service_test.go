package medication

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blisstech/pharmacy-api/internal/model"
	auditService "github.com/blisstech/pharmacy-api/internal/service/audit"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

type mockRepo struct {
	byID  map[uuid.UUID]*model.Medication
	byDIN map[string]*model.Medication

	// afterGet runs once after the next Get, simulating another writer
	// landing between a read and the write that follows it.
	afterGet func()
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:  make(map[uuid.UUID]*model.Medication),
		byDIN: make(map[string]*model.Medication),
	}
}

func (m *mockRepo) Create(ctx context.Context, med *model.Medication) error {
	if _, exists := m.byDIN[med.DIN]; exists {
		return apperrors.DuplicateIdentifier(med.DIN)
	}
	m.byID[med.ID] = med
	m.byDIN[med.DIN] = med
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	med, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NotFound("medication")
	}
	copied := *med
	if m.afterGet != nil {
		fn := m.afterGet
		m.afterGet = nil
		fn()
	}
	return &copied, nil
}

func (m *mockRepo) GetTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Medication, error) {
	return m.Get(ctx, id)
}

func (m *mockRepo) AdjustStock(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, delta int) (int, error) {
	med, ok := m.byID[id]
	if !ok {
		return 0, apperrors.NotFound("medication")
	}
	if med.Stock+delta < 0 {
		return med.Stock, apperrors.InsufficientStock(-delta, med.Stock)
	}
	med.Stock += delta
	return med.Stock, nil
}

func (m *mockRepo) UpdateMutable(ctx context.Context, med *model.Medication) error {
	stored, ok := m.byID[med.ID]
	if !ok {
		return apperrors.NotFound("medication")
	}
	stored.Price = med.Price
	stored.Description = med.Description
	return nil
}

func (m *mockRepo) List(ctx context.Context, filter *model.MedicationFilter) ([]*model.Medication, error) {
	var out []*model.Medication
	for _, med := range m.byID {
		out = append(out, med)
	}
	return out, nil
}

func (m *mockRepo) CountLowStock(ctx context.Context, threshold int) (int, error) { return 0, nil }

type recordingAuditRepo struct {
	entries []*model.AuditLogEntry
}

func (r *recordingAuditRepo) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAuditRepo) AppendTx(ctx context.Context, tx *sqlx.Tx, entry *model.AuditLogEntry) error {
	return r.Append(ctx, entry)
}

func (r *recordingAuditRepo) List(ctx context.Context) ([]*model.AuditLogEntry, error) {
	return r.entries, nil
}

func newService() (*Service, *mockRepo, *recordingAuditRepo) {
	repo := newMockRepo()
	auditRepo := &recordingAuditRepo{}
	return NewService(repo, auditService.NewService(auditRepo)), repo, auditRepo
}

func adminSession() model.Session {
	return model.Session{Username: "akaur", Role: model.RoleAdmin}
}

func registerRequest() *model.RegisterMedicationRequest {
	return &model.RegisterMedicationRequest{
		Name:       "Metformin 850mg",
		DIN:        "02229656",
		Stock:      500,
		Price:      0.18,
		Expiration: model.NewDate(2027, 6, 30),
	}
}

func TestRegister(t *testing.T) {
	svc, _, auditRepo := newService()

	med, err := svc.Register(context.Background(), adminSession(), registerRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, med.ID)
	assert.Equal(t, "02229656", med.DIN)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.AuditActionRegisterMedication, auditRepo.entries[0].Action)
}

func TestRegister_DuplicateDIN(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Register(context.Background(), adminSession(), registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), adminSession(), registerRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateIdentifier))
}

func TestRegister_UnknownRoleDenied(t *testing.T) {
	svc, _, auditRepo := newService()

	session := model.Session{Username: "guest", Role: model.Role("intern")}
	_, err := svc.Register(context.Background(), session, registerRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.AuditActionDeniedAccess, auditRepo.entries[0].Action)
}

func TestUpdate_MutableFields(t *testing.T) {
	svc, _, _ := newService()

	med, err := svc.Register(context.Background(), adminSession(), registerRequest())
	require.NoError(t, err)

	stock := 450
	price := 0.21
	body := []byte(`{"stock": 450, "price": 0.21}`)
	updated, err := svc.Update(context.Background(), adminSession(), med.ID, body,
		&model.UpdateMedicationRequest{Stock: &stock, Price: &price})
	require.NoError(t, err)

	assert.Equal(t, 450, updated.Stock)
	assert.Equal(t, 0.21, updated.Price)
	assert.Equal(t, "02229656", updated.DIN)
}

func TestUpdate_RejectsIdentityFields(t *testing.T) {
	svc, _, _ := newService()

	med, err := svc.Register(context.Background(), adminSession(), registerRequest())
	require.NoError(t, err)

	stock := 450
	body := []byte(`{"stock": 450, "din": "99999999"}`)
	_, err = svc.Update(context.Background(), adminSession(), med.ID, body,
		&model.UpdateMedicationRequest{Stock: &stock})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	stored, err := svc.Get(context.Background(), med.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.Stock, "rejected update must not change anything")
}

func TestUpdate_StockSetPreservesConcurrentDispense(t *testing.T) {
	svc, repo, _ := newService()

	med, err := svc.Register(context.Background(), adminSession(), registerRequest())
	require.NoError(t, err)

	// A fill dispenses 30 units after the update reads the row.
	repo.afterGet = func() { repo.byID[med.ID].Stock -= 30 }

	stock := 400
	updated, err := svc.Update(context.Background(), adminSession(), med.ID, []byte(`{"stock": 400}`),
		&model.UpdateMedicationRequest{Stock: &stock})
	require.NoError(t, err)

	assert.Equal(t, 370, updated.Stock, "dispensed quantity stays subtracted from the correction")
	assert.Equal(t, 370, repo.byID[med.ID].Stock)
}

func TestUpdate_UnknownMedication(t *testing.T) {
	svc, _, _ := newService()

	stock := 1
	_, err := svc.Update(context.Background(), adminSession(), uuid.New(), []byte(`{"stock": 1}`),
		&model.UpdateMedicationRequest{Stock: &stock})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestLowStockClassification(t *testing.T) {
	assert.True(t, (&model.Medication{Stock: 99}).LowStock())
	assert.False(t, (&model.Medication{Stock: 100}).LowStock(), "threshold itself is not low")
}
