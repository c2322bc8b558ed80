package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blisstech/pharmacy-api/internal/middleware"
	"github.com/blisstech/pharmacy-api/internal/service/audit"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
	"github.com/blisstech/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
}

// List returns the full audit trail in sequence order. The service rejects
// callers without the admin role.
func (h *Handler) List(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("no session"))
		return
	}

	entries, err := h.service.List(c.Request.Context(), *session)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, entries)
}
