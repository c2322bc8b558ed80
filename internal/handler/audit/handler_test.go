package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blisstech/pharmacy-api/internal/middleware"
	"github.com/blisstech/pharmacy-api/internal/model"
	auditService "github.com/blisstech/pharmacy-api/internal/service/audit"
	"github.com/blisstech/pharmacy-api/pkg/auth"
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

func setup(t *testing.T) (*gin.Engine, *memoryAuditRepo, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &memoryAuditRepo{}
	svc := auditService.NewService(repo)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)

	engine := gin.New()
	group := engine.Group("/api/v1")
	group.Use(middleware.NewAuthMiddleware(jwtSvc).Authenticate())
	NewHandler(svc).RegisterRoutes(group)

	return engine, repo, jwtSvc
}

func tokenFor(t *testing.T, jwtSvc auth.JWTService, username string, role model.Role) string {
	t.Helper()
	user := &model.User{Username: username, Role: role}
	token, err := jwtSvc.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func request(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestList_NoToken(t *testing.T) {
	engine, _, _ := setup(t)

	w := request(engine, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestList_PharmacistForbidden(t *testing.T) {
	engine, repo, jwtSvc := setup(t)

	w := request(engine, tokenFor(t, jwtSvc, "mchen", model.RolePharmacist))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The rejected read is itself on the trail.
	require.Len(t, repo.entries, 1)
	assert.Equal(t, model.AuditActionDeniedAccess, repo.entries[0].Action)
}

func TestList_AdminSeesTrailInOrder(t *testing.T) {
	engine, repo, jwtSvc := setup(t)

	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, &model.AuditLogEntry{Actor: "mchen", Action: model.AuditActionFillPrescription}))
	require.NoError(t, repo.Append(ctx, &model.AuditLogEntry{Actor: "mchen", Action: model.AuditActionCreatePatient}))

	w := request(engine, tokenFor(t, jwtSvc, "akaur", model.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                   `json:"success"`
		Data    []*model.AuditLogEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Less(t, body.Data[0].Seq, body.Data[1].Seq)
}

func TestList_GarbageToken(t *testing.T) {
	engine, _, _ := setup(t)

	w := request(engine, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
