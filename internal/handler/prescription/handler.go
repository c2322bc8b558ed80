package prescription

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/blisstech/pharmacy-api/internal/middleware"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	"github.com/blisstech/pharmacy-api/internal/service/fill"
	"github.com/blisstech/pharmacy-api/internal/service/refill"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
	"github.com/blisstech/pharmacy-api/pkg/handoff"
	"github.com/blisstech/pharmacy-api/pkg/httputil"
)

type Handler struct {
	fillService   *fill.Service
	refillService *refill.Service
	handoffStore  *handoff.Store
	rxRepo        repository.PrescriptionRepository
	patientRepo   repository.PatientRepository
}

func NewHandler(
	fillService *fill.Service,
	refillService *refill.Service,
	handoffStore *handoff.Store,
	rxRepo repository.PrescriptionRepository,
	patientRepo repository.PatientRepository,
) *Handler {
	return &Handler{
		fillService:   fillService,
		refillService: refillService,
		handoffStore:  handoffStore,
		rxRepo:        rxRepo,
		patientRepo:   patientRepo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rx := r.Group("/prescriptions")
	{
		rx.POST("/fill", h.Fill)
		rx.GET("/due", h.Due)
		rx.GET("/upcoming", h.Upcoming)
		rx.POST("/handoff", h.StageHandoff)
		rx.GET("/handoff/:ticket", h.ClaimHandoff)
	}
}

func (h *Handler) Fill(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("no session"))
		return
	}

	var req model.FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	rec, err := h.fillService.Fill(c.Request.Context(), *session, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, rec)
}

func (h *Handler) Due(c *gin.Context) {
	filter := model.DueFilter(c.Query("filter"))
	switch filter {
	case model.DueFilterToday, model.DueFilterSoon:
	default:
		httputil.RespondWithError(c, apperrors.Validation("filter must be today or soon"))
		return
	}

	records, err := h.refillService.Due(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, records)
}

func (h *Handler) Upcoming(c *gin.Context) {
	limit := refill.DefaultUpcomingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.RespondWithError(c, apperrors.Validation("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := h.refillService.Upcoming(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, records)
}

// StageHandoff prepares a fill command from a prior prescription so the
// fulfillment form opens pre-populated. The returned ticket is single-use.
func (h *Handler) StageHandoff(c *gin.Context) {
	var req model.StageFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	rec, err := h.rxRepo.Get(c.Request.Context(), req.PrescriptionID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	patient, err := h.patientRepo.Get(c.Request.Context(), rec.PatientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cmd := &model.FillCommand{
		PatientID:    rec.PatientID,
		PatientName:  patient.Name,
		MedicationID: rec.MedicationID,
		Prescriber:   rec.Prescriber,
		Sig:          rec.Sig,
		Quantity:     rec.Quantity,
		DaysSupply:   rec.DaysSupply,
		Refills:      rec.Refills,
	}
	ticket := h.handoffStore.Stage(cmd)

	httputil.RespondWithSuccess(c, http.StatusCreated, gin.H{"ticket": ticket})
}

func (h *Handler) ClaimHandoff(c *gin.Context) {
	ticket, err := uuid.Parse(c.Param("ticket"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid ticket"))
		return
	}

	cmd, ok := h.handoffStore.Claim(ticket)
	if !ok {
		httputil.RespondWithError(c, apperrors.NotFound("handoff ticket"))
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, cmd)
}
