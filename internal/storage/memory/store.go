package memory

import (
	"context"
	"sync"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/errors"
)

// Store keeps profiles in process memory. It backs tests and the
// storage.driver=memory mode; everything is lost on restart.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
	byKey    map[string]string
}

func NewStore() *Store {
	return &Store{
		profiles: make(map[string]*domain.Profile),
		byKey:    make(map[string]string),
	}
}

func (s *Store) CreateProfile(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.Name]; exists {
		return errors.New(errors.CodeAlreadyExists,
			errors.WithMessagef("user %q already exists", p.Name))
	}

	s.profiles[p.Name] = p.Clone()
	s.byKey[p.APIKey] = p.Name
	return nil
}

func (s *Store) Profile(_ context.Context, name string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profileLocked(name)
}

func (s *Store) ProfileByKey(_ context.Context, key string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.byKey[key]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("unknown api key"))
	}
	return s.profileLocked(name)
}

func (s *Store) SaveProfile(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.profiles[p.Name]
	if !exists {
		return errors.New(errors.CodeNotFound,
			errors.WithMessagef("user %q does not exist", p.Name))
	}

	cp := p.Clone()
	// Identity and credential are immutable after sign-up.
	cp.PasswordHash = stored.PasswordHash
	cp.APIKey = stored.APIKey
	cp.Team = stored.Team
	s.profiles[p.Name] = cp
	return nil
}

// profileLocked hands out a deep copy so callers can't mutate the
// stored record outside of SaveProfile.
func (s *Store) profileLocked(name string) (*domain.Profile, error) {
	p, ok := s.profiles[name]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("user %q does not exist", name))
	}
	return p.Clone(), nil
}
