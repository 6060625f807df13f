package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/errors"
)

// Store is the profile persistence this service needs.
type Store interface {
	CreateProfile(ctx context.Context, p *domain.Profile) error
	Profile(ctx context.Context, name string) (*domain.Profile, error)
	ProfileByKey(ctx context.Context, key string) (*domain.Profile, error)
}

type Config struct {
	Store Store
}

// Service handles accounts: sign-up, login and credential resolution.
type Service struct {
	store Store
}

func NewService(c Config) *Service {
	return &Service{store: c.Store}
}

type SignUpRequest struct {
	Name     string
	Password string
	Team     string
}

type SignUpResponse struct {
	APIKey string
}

// SignUp creates a profile on one of the fixed teams and issues a
// fresh API key. The team name is checked case-insensitively and
// stored lowercased.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	team, ok := domain.NormalizeTeam(req.Team)
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unexpected team %q", req.Team))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &domain.Profile{
		Name:         req.Name,
		PasswordHash: string(hash),
		APIKey:       uuid.NewString(),
		Team:         team,
		CreateTime:   time.Now(),
	}

	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}

	return &SignUpResponse{APIKey: p.APIKey}, nil
}

type LoginRequest struct {
	Name     string
	Password string
}

type LoginResponse struct {
	APIKey string
}

// Login verifies the password and returns the user's API key.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	p, err := s.store.Profile(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("password is incorrect"),
			errors.WithCause(err),
		)
	}

	return &LoginResponse{APIKey: p.APIKey}, nil
}

// ResolveKey maps an API key to its profile. Unknown keys come back
// as unauthenticated, not as not-found, so the gateway can answer 401
// without leaking which keys exist.
func (s *Service) ResolveKey(ctx context.Context, key string) (*domain.Profile, error) {
	if key == "" {
		return nil, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("missing api key"))
	}

	p, err := s.store.ProfileByKey(ctx, key)
	if errors.Is(err, errors.CodeNotFound) {
		return nil, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("invalid api key"),
			errors.WithCause(err),
		)
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Score returns the user's current point total.
func (s *Service) Score(ctx context.Context, name string) (int, error) {
	p, err := s.store.Profile(ctx, name)
	if err != nil {
		return 0, err
	}
	return p.Points, nil
}
