package medication

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/blisstech/pharmacy-api/internal/middleware"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/service/medication"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
	"github.com/blisstech/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service *medication.Service
}

func NewHandler(service *medication.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	meds := r.Group("/medications")
	{
		meds.POST("", h.Register)
		meds.GET("", h.List)
		meds.GET("/:id", h.Get)
		meds.PUT("/:id", h.Update)
	}
}

func (h *Handler) Register(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("no session"))
		return
	}

	var req model.RegisterMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	med, err := h.service.Register(c.Request.Context(), *session, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, med)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid medication id"))
		return
	}

	med, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, med)
}

// Update accepts only mutable fields. The raw body travels to the service
// so that requests trying to rewrite identity fields are rejected rather
// than silently ignored.
func (h *Handler) Update(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("no session"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid medication id"))
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("unreadable request body"))
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(rawBody))

	var req model.UpdateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	med, err := h.service.Update(c.Request.Context(), *session, id, rawBody, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, med)
}

func (h *Handler) List(c *gin.Context) {
	filter := &model.MedicationFilter{
		Query:    c.Query("q"),
		LowStock: c.Query("low_stock") == "true",
	}

	meds, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, meds)
}
