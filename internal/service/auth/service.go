package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/mediqueue/internal/config"
	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/pkg/auth"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
	"github.com/jwalitptl/mediqueue/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute

	// Compared against for unknown usernames so they cost as much as a wrong password.
	dummyPassword = "mediqueue-unknown-user"
)

var (
	ErrInvalidCredentials = &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: "invalid credentials"}
	ErrLocked             = &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: "account is locked, please try again later"}
)

type AuthServicer interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type staffAccount struct {
	passwordHash string
	role         model.Role
	doctorID     string
}

// Service authenticates the staff accounts declared in configuration.
type Service struct {
	users     map[string]staffAccount
	hasher    security.PasswordHasher
	jwtSvc    auth.JWTService
	attempts  *cache.Cache
	dummyHash string
}

// NewService fails on duplicate usernames and on password hashes the hasher
// cannot read, so a typo in configuration surfaces at startup.
func NewService(users []config.StaffUser, hasher security.PasswordHasher, jwtSvc auth.JWTService) (*Service, error) {
	accounts := make(map[string]staffAccount, len(users))
	for _, u := range users {
		name := strings.ToLower(strings.TrimSpace(u.Username))
		if _, dup := accounts[name]; dup {
			return nil, fmt.Errorf("duplicate staff user %q", name)
		}
		if !hasher.Valid(u.PasswordHash) {
			return nil, fmt.Errorf("staff user %q: password_hash is not a valid hash", name)
		}
		accounts[name] = staffAccount{
			passwordHash: u.PasswordHash,
			role:         model.Role(strings.ToLower(u.Role)),
			doctorID:     u.DoctorID,
		}
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password check: %w", err)
	}

	return &Service{
		users:     accounts,
		hasher:    hasher,
		jwtSvc:    jwtSvc,
		attempts:  cache.New(lockoutDuration, 2*lockoutDuration),
		dummyHash: dummyHash,
	}, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	if n, ok := s.attempts.Get(username); ok && n.(int) >= maxLoginAttempts {
		return nil, ErrLocked
	}

	account, ok := s.users[username]
	if !ok {
		_ = s.hasher.Compare(s.dummyHash, req.Password)
		s.failed(username)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(account.passwordHash, req.Password); err != nil {
		s.failed(username)
		return nil, ErrInvalidCredentials
	}
	s.attempts.Delete(username)

	token, ttl, err := s.jwtSvc.GenerateAccessToken(username, account.role, account.doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		Role:        account.role,
		DoctorID:    account.doctorID,
	}, nil
}

func (s *Service) failed(username string) {
	if _, err := s.attempts.IncrementInt(username, 1); err != nil {
		s.attempts.SetDefault(username, 1)
	}
}
