package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	"github.com/blisstech/pharmacy-api/internal/service/audit"
	"github.com/blisstech/pharmacy-api/pkg/auth"
	apperrors "github.com/blisstech/pharmacy-api/pkg/errors"
)

const bcryptCost = 12

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	auditor  *audit.Service
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, auditor *audit.Service) *Service {
	return &Service{userRepo: userRepo, jwtSvc: jwtSvc, auditor: auditor}
}

// Login checks terminal credentials and issues a session token. The error is
// the same whether the user is unknown or the password is wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.auditor.Record(ctx, user.Username, model.AuditActionLogin,
		"user:"+user.ID.String(), "terminal login"); err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// HashPassword produces the stored credential hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
