package audit

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/blisstech/pharmacy-api/internal/access"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

// Service is the audit trail. Entries are append-only; reading the trail is
// itself a gated, audited operation.
type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Record appends one entry for a mutating action.
func (s *Service) Record(ctx context.Context, actor, action, subject, detail string) error {
	entry := &model.AuditLogEntry{
		Actor:   actor,
		Action:  action,
		Subject: subject,
		Detail:  detail,
	}
	return s.repo.Append(ctx, entry)
}

// DeniedAccess records a failed permission check. The denial itself is part
// of the compliance record, so a failure to write it is only logged: the
// caller still gets its Unauthorized error.
func (s *Service) DeniedAccess(ctx context.Context, actor string, op access.Operation) {
	entry := &model.AuditLogEntry{
		Actor:   actor,
		Action:  model.AuditActionDeniedAccess,
		Subject: string(op),
		Detail:  "operation not permitted for role",
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		log.Error().Err(err).Str("actor", actor).Str("operation", string(op)).
			Msg("failed to record denied access")
	}
}

// List returns the full trail in ascending sequence order. Only admins may
// read it; a denied attempt is appended before the error returns.
func (s *Service) List(ctx context.Context, session model.Session) ([]*model.AuditLogEntry, error) {
	if !access.Can(session.Role, access.OpReadAuditLog) {
		s.DeniedAccess(ctx, session.Username, access.OpReadAuditLog)
		return nil, apperrors.Unauthorized("audit log access requires admin role")
	}
	return s.repo.List(ctx)
}
