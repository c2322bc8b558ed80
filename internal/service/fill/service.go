package fill

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/blisstech/pharmacy-api/internal/access"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	"github.com/blisstech/pharmacy-api/internal/service/audit"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
	"github.com/blisstech/pharmacy-api/pkg/metrics"
)

// TxRunner executes a function inside a storage transaction; rollback on
// error is the compensating action for the stock decrement.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

// Service commits a dispensing event as one atomic unit: stock decrement,
// prescription append, audit append and outbox event either all land or none
// do.
type Service struct {
	tx         TxRunner
	ledger     repository.MedicationRepository
	patients   repository.PatientRepository
	rxRepo     repository.PrescriptionRepository
	auditRepo  repository.AuditRepository
	outboxRepo repository.OutboxRepository
	auditor    *audit.Service
	metrics    *metrics.Metrics
}

func NewService(
	tx TxRunner,
	ledger repository.MedicationRepository,
	patients repository.PatientRepository,
	rxRepo repository.PrescriptionRepository,
	auditRepo repository.AuditRepository,
	outboxRepo repository.OutboxRepository,
	auditor *audit.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		tx:         tx,
		ledger:     ledger,
		patients:   patients,
		rxRepo:     rxRepo,
		auditRepo:  auditRepo,
		outboxRepo: outboxRepo,
		auditor:    auditor,
		metrics:    m,
	}
}

// Fill validates and commits one prescription fulfillment.
//
// Phase one validates against current stock with no writes. Phase two runs
// the decrement through the ledger's conditional update inside a
// transaction; losing a race to another terminal surfaces as a failed
// decrement, which triggers one re-validation and retry before the call
// gives up with Conflict.
func (s *Service) Fill(ctx context.Context, session model.Session, req *model.FillRequest) (*model.PrescriptionRecord, error) {
	if !access.Can(session.Role, access.OpFillPrescription) {
		s.auditor.DeniedAccess(ctx, session.Username, access.OpFillPrescription)
		return nil, apperrors.Unauthorized("role may not fill prescriptions")
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	med, err := s.ledger.Get(ctx, req.MedicationID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > med.Stock {
		s.recordDenied(ctx, session, med, req)
		s.observe("insufficient_stock")
		return nil, apperrors.InsufficientStock(req.Quantity, med.Stock)
	}

	rec, err := s.commit(ctx, session, patient, req)
	if err != nil && apperrors.Is(err, apperrors.ErrInsufficientStock) {
		// Lost the race between validate and commit: re-validate once.
		med, err = s.ledger.Get(ctx, req.MedicationID)
		if err != nil {
			return nil, err
		}
		if req.Quantity > med.Stock {
			s.recordDenied(ctx, session, med, req)
			s.observe("conflict")
			return nil, apperrors.Conflict("stock changed during fill, please resubmit")
		}
		rec, err = s.commit(ctx, session, patient, req)
		if err != nil && apperrors.Is(err, apperrors.ErrInsufficientStock) {
			s.observe("conflict")
			return nil, apperrors.Conflict("stock changed during fill, please resubmit")
		}
	}
	if err != nil {
		s.observe("error")
		return nil, err
	}

	s.observe("filled")
	return rec, nil
}

// commit is the indivisible reserve+commit phase. Any failure after the
// decrement rolls the whole transaction back, so stock is never silently
// lost.
func (s *Service) commit(ctx context.Context, session model.Session, patient *model.Patient, req *model.FillRequest) (*model.PrescriptionRecord, error) {
	rec := &model.PrescriptionRecord{
		ID:             uuid.New(),
		PatientID:      req.PatientID,
		MedicationID:   req.MedicationID,
		Prescriber:     req.Prescriber,
		Sig:            req.Sig,
		Quantity:       req.Quantity,
		DaysSupply:     req.DaysSupply,
		Refills:        req.Refills,
		DateFilled:     req.DateFilled,
		NextRefillDate: model.NextRefill(req.DateFilled, req.DaysSupply),
		FilledBy:       session.Username,
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Re-read inside the transaction: the crossing check and audit detail
		// compare against the stock the decrement applies to, not the
		// validation-phase snapshot.
		med, err := s.ledger.GetTx(ctx, tx, req.MedicationID)
		if err != nil {
			return err
		}

		newStock, err := s.ledger.AdjustStock(ctx, tx, req.MedicationID, -req.Quantity)
		if err != nil {
			return err
		}

		if err := s.rxRepo.Append(ctx, tx, rec); err != nil {
			return err
		}

		entry := &model.AuditLogEntry{
			Actor:   session.Username,
			Action:  model.AuditActionFillPrescription,
			Subject: fmt.Sprintf("medication:%s patient:%s", med.ID, patient.ID),
			Detail:  fmt.Sprintf("dispensed %d x %s to %s", req.Quantity, med.Name, patient.Name),
		}
		if err := s.auditRepo.AppendTx(ctx, tx, entry); err != nil {
			return err
		}

		return s.appendEvents(ctx, tx, session, patient, med, rec, newStock)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) appendEvents(ctx context.Context, tx *sqlx.Tx, session model.Session, patient *model.Patient, med *model.Medication, rec *model.PrescriptionRecord, newStock int) error {
	dispense, err := json.Marshal(model.DispenseEvent{
		PrescriptionID: rec.ID,
		MedicationID:   med.ID,
		PatientID:      patient.ID,
		Quantity:       rec.Quantity,
		StockAfter:     newStock,
		FilledBy:       session.Username,
	})
	if err != nil {
		return err
	}
	if err := s.outboxRepo.CreateTx(ctx, tx, &model.OutboxEvent{
		EventType: model.EventDispenseRecorded,
		Payload:   dispense,
	}); err != nil {
		return err
	}

	// Emit a reorder alert only when this fill crosses the threshold.
	if newStock < model.LowStockThreshold && med.Stock >= model.LowStockThreshold {
		low, err := json.Marshal(model.StockLowEvent{
			MedicationID:   med.ID,
			MedicationName: med.Name,
			Stock:          newStock,
			Threshold:      model.LowStockThreshold,
		})
		if err != nil {
			return err
		}
		if err := s.outboxRepo.CreateTx(ctx, tx, &model.OutboxEvent{
			EventType: model.EventStockLow,
			Payload:   low,
		}); err != nil {
			return err
		}
	}
	return nil
}

// recordDenied writes the FillDenied compliance entry. It sits outside the
// fill transaction: there is no stock effect to pair it with.
func (s *Service) recordDenied(ctx context.Context, session model.Session, med *model.Medication, req *model.FillRequest) {
	err := s.auditor.Record(ctx, session.Username, model.AuditActionFillDenied,
		fmt.Sprintf("medication:%s patient:%s", med.ID, req.PatientID),
		fmt.Sprintf("denied %d x %s, %d in stock", req.Quantity, med.Name, med.Stock),
	)
	if err != nil {
		log.Error().Err(err).Str("medication", med.ID.String()).Msg("failed to record denied fill")
	}
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.FillsTotal.WithLabelValues(outcome).Inc()
	}
}
