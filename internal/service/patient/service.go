package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/blisstech/pharmacy-api/internal/access"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	"github.com/blisstech/pharmacy-api/internal/service/audit"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

// Service is the patient directory. The fulfillment core only needs ids and
// display names from it; intake lives here because the terminal UI does.
type Service struct {
	repo    repository.PatientRepository
	rxRepo  repository.PrescriptionRepository
	auditor *audit.Service
}

func NewService(repo repository.PatientRepository, rxRepo repository.PrescriptionRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, rxRepo: rxRepo, auditor: auditor}
}

func (s *Service) Create(ctx context.Context, session model.Session, req *model.CreatePatientRequest) (*model.Patient, error) {
	if !access.Can(session.Role, access.OpCreatePatient) {
		s.auditor.DeniedAccess(ctx, session.Username, access.OpCreatePatient)
		return nil, apperrors.Unauthorized("role may not create patients")
	}

	patient := &model.Patient{
		Base:              model.Base{ID: uuid.New()},
		Name:              req.Name,
		BirthDate:         req.BirthDate,
		Phone:             req.Phone,
		Email:             req.Email,
		Address:           req.Address,
		City:              req.City,
		Province:          req.Province,
		PostalCode:        req.PostalCode,
		HealthCardNum:     req.HealthCardNum,
		Allergies:         req.Allergies,
		InsuranceProvider: req.InsuranceProvider,
		InsuranceID:       req.InsuranceID,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}

	if err := s.auditor.Record(ctx, session.Username, model.AuditActionCreatePatient,
		"patient:"+patient.ID.String(),
		fmt.Sprintf("created patient %s", patient.Name),
	); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	return s.repo.List(ctx)
}

// Search is a case-insensitive substring lookup over patient names and the
// names of medications on their dispensing history. An empty query returns
// the full directory.
func (s *Service) Search(ctx context.Context, query string) ([]*model.Patient, error) {
	return s.repo.Search(ctx, query, true)
}

// History returns the patient's dispensing history, newest first.
func (s *Service) History(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionRecord, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.rxRepo.ListByPatient(ctx, patientID)
}
