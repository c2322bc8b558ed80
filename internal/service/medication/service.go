package medication

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/blisstech/pharmacy-api/internal/access"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	"github.com/blisstech/pharmacy-api/internal/service/audit"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

// Service is the medication ledger: drug identity plus the authoritative
// stock quantity.
type Service struct {
	repo    repository.MedicationRepository
	auditor *audit.Service
}

func NewService(repo repository.MedicationRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Register adds a drug to the formulary. The DIN is immutable from here on.
func (s *Service) Register(ctx context.Context, session model.Session, req *model.RegisterMedicationRequest) (*model.Medication, error) {
	if !access.Can(session.Role, access.OpRegisterMedication) {
		s.auditor.DeniedAccess(ctx, session.Username, access.OpRegisterMedication)
		return nil, apperrors.Unauthorized("role may not register medications")
	}

	med := &model.Medication{
		Base:        model.Base{ID: uuid.New()},
		Name:        req.Name,
		DIN:         req.DIN,
		NDC:         req.NDC,
		Description: req.Description,
		Stock:       req.Stock,
		Price:       req.Price,
		Expiration:  req.Expiration,
	}
	if err := s.repo.Create(ctx, med); err != nil {
		return nil, err
	}

	if err := s.auditor.Record(ctx, session.Username, model.AuditActionRegisterMedication,
		"medication:"+med.ID.String(),
		fmt.Sprintf("registered %s (DIN %s), initial stock %d", med.Name, med.DIN, med.Stock),
	); err != nil {
		return nil, err
	}
	return med, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	return s.repo.Get(ctx, id)
}

// Update applies a partial update of the mutable fields. The raw body is
// inspected first so a request smuggling identity fields is rejected rather
// than silently ignored.
func (s *Service) Update(ctx context.Context, session model.Session, id uuid.UUID, rawBody []byte, req *model.UpdateMedicationRequest) (*model.Medication, error) {
	if !access.Can(session.Role, access.OpUpdateMedication) {
		s.auditor.DeniedAccess(ctx, session.Username, access.OpUpdateMedication)
		return nil, apperrors.Unauthorized("role may not update medications")
	}
	if err := rejectIdentityFields(rawBody); err != nil {
		return nil, err
	}

	med, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// A stock correction applies as a delta through the ledger's conditional
	// update, so a dispense landing between this read and the write stays
	// subtracted instead of being overwritten.
	if req.Stock != nil && *req.Stock != med.Stock {
		newStock, err := s.repo.AdjustStock(ctx, nil, id, *req.Stock-med.Stock)
		if err != nil {
			return nil, err
		}
		med.Stock = newStock
	}
	if req.Price != nil {
		med.Price = *req.Price
	}
	if req.Description != nil {
		med.Description = req.Description
	}
	if err := s.repo.UpdateMutable(ctx, med); err != nil {
		return nil, err
	}

	if err := s.auditor.Record(ctx, session.Username, model.AuditActionUpdateMedication,
		"medication:"+med.ID.String(),
		fmt.Sprintf("updated %s, stock now %d", med.Name, med.Stock),
	); err != nil {
		return nil, err
	}
	return med, nil
}

func (s *Service) List(ctx context.Context, filter *model.MedicationFilter) ([]*model.Medication, error) {
	return s.repo.List(ctx, filter)
}

// rejectIdentityFields fails the update when the request body names an
// identity field, preventing identity drift post-creation.
func rejectIdentityFields(rawBody []byte) error {
	if len(rawBody) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawBody, &fields); err != nil {
		return apperrors.Validation("malformed update request")
	}
	for _, identity := range []string{"din", "ndc"} {
		if _, present := fields[identity]; present {
			return apperrors.Validation(fmt.Sprintf("field %q is immutable", identity))
		}
	}
	return nil
}
