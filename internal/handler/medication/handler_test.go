package medication

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blisstech/pharmacy-api/internal/middleware"
	"github.com/blisstech/pharmacy-api/internal/model"
	auditService "github.com/blisstech/pharmacy-api/internal/service/audit"
	medicationService "github.com/blisstech/pharmacy-api/internal/service/medication"
	"github.com/blisstech/pharmacy-api/pkg/auth"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
	"github.com/blisstech/pharmacy-api/pkg/validator"
)

type memoryMedRepo struct {
	meds map[uuid.UUID]*model.Medication
}

func (m *memoryMedRepo) Create(ctx context.Context, med *model.Medication) error {
	for _, existing := range m.meds {
		if existing.DIN == med.DIN {
			return apperrors.DuplicateIdentifier(med.DIN)
		}
	}
	m.meds[med.ID] = med
	return nil
}

func (m *memoryMedRepo) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, apperrors.NotFound("medication")
	}
	copied := *med
	return &copied, nil
}

func (m *memoryMedRepo) GetTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Medication, error) {
	return m.Get(ctx, id)
}

func (m *memoryMedRepo) AdjustStock(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, delta int) (int, error) {
	med, ok := m.meds[id]
	if !ok {
		return 0, apperrors.NotFound("medication")
	}
	if med.Stock+delta < 0 {
		return med.Stock, apperrors.InsufficientStock(-delta, med.Stock)
	}
	med.Stock += delta
	return med.Stock, nil
}

func (m *memoryMedRepo) UpdateMutable(ctx context.Context, med *model.Medication) error {
	stored, ok := m.meds[med.ID]
	if !ok {
		return apperrors.NotFound("medication")
	}
	stored.Price = med.Price
	stored.Description = med.Description
	return nil
}

func (m *memoryMedRepo) List(ctx context.Context, filter *model.MedicationFilter) ([]*model.Medication, error) {
	var out []*model.Medication
	for _, med := range m.meds {
		out = append(out, med)
	}
	return out, nil
}

func (m *memoryMedRepo) CountLowStock(ctx context.Context, threshold int) (int, error) {
	return 0, nil
}

type nullAuditRepo struct{}

func (nullAuditRepo) Append(ctx context.Context, entry *model.AuditLogEntry) error { return nil }
func (nullAuditRepo) AppendTx(ctx context.Context, tx *sqlx.Tx, entry *model.AuditLogEntry) error {
	return nil
}
func (nullAuditRepo) List(ctx context.Context) ([]*model.AuditLogEntry, error) { return nil, nil }

func setup(t *testing.T) (*gin.Engine, *memoryMedRepo, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Register())

	repo := &memoryMedRepo{meds: make(map[uuid.UUID]*model.Medication)}
	svc := medicationService.NewService(repo, auditService.NewService(nullAuditRepo{}))
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)

	token, err := jwtSvc.GenerateToken(&model.User{Username: "mchen", Role: model.RolePharmacist})
	require.NoError(t, err)

	engine := gin.New()
	group := engine.Group("/api/v1")
	group.Use(middleware.NewAuthMiddleware(jwtSvc).Authenticate())
	NewHandler(svc).RegisterRoutes(group)

	return engine, repo, token
}

func do(engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func seed(t *testing.T, repo *memoryMedRepo) *model.Medication {
	t.Helper()
	med := &model.Medication{
		Base:       model.Base{ID: uuid.New()},
		Name:       "Lisinopril 10mg",
		DIN:        "02217481",
		Stock:      30,
		Price:      0.22,
		Expiration: model.NewDate(2027, 6, 30),
	}
	require.NoError(t, repo.Create(context.Background(), med))
	return med
}

func TestRegisterEndpoint(t *testing.T) {
	engine, _, token := setup(t)

	w := do(engine, http.MethodPost, "/api/v1/medications", token, gin.H{
		"name":       "Sertraline 50mg",
		"din":        "02240485",
		"stock":      150,
		"price":      0.52,
		"expiration": "2027-06-30",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRegisterEndpoint_DuplicateDIN(t *testing.T) {
	engine, repo, token := setup(t)
	med := seed(t, repo)

	w := do(engine, http.MethodPost, "/api/v1/medications", token, gin.H{
		"name":       "Lisinopril again",
		"din":        med.DIN,
		"stock":      10,
		"price":      0.22,
		"expiration": "2027-06-30",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateEndpoint_RejectsDINSmuggling(t *testing.T) {
	engine, repo, token := setup(t)
	med := seed(t, repo)

	w := do(engine, http.MethodPut, "/api/v1/medications/"+med.ID.String(), token, gin.H{
		"stock": 500,
		"din":   "99999999",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	stored, err := repo.Get(context.Background(), med.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Stock)
	assert.Equal(t, "02217481", stored.DIN)
}

func TestUpdateEndpoint_MutableFields(t *testing.T) {
	engine, repo, token := setup(t)
	med := seed(t, repo)

	w := do(engine, http.MethodPut, "/api/v1/medications/"+med.ID.String(), token, gin.H{
		"stock": 500,
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.Get(context.Background(), med.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.Stock)
}

func TestGetEndpoint_NotFound(t *testing.T) {
	engine, _, token := setup(t)

	w := do(engine, http.MethodGet, "/api/v1/medications/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEndpoints_RequireToken(t *testing.T) {
	engine, _, _ := setup(t)

	w := do(engine, http.MethodGet, "/api/v1/medications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
