package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blisstech/pharmacy-api/internal/service/refill"
	"github.com/blisstech/pharmacy-api/pkg/httputil"
)

type Handler struct {
	refillService *refill.Service
}

func NewHandler(refillService *refill.Service) *Handler {
	return &Handler{refillService: refillService}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/stats", h.Stats)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.refillService.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}
