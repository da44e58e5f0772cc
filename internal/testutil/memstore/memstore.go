// Package memstore is an in-memory stand-in for the PostgreSQL repository.
// It enforces the same unique, foreign key and scope rules and returns the
// repository's sentinel errors.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/companyhub/companyhub/internal/model"
	"github.com/companyhub/companyhub/internal/repository"
)

// Store holds users, companies and revoked tokens.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	nextUser  int64
	nextComp  int64
	users     map[int64]*model.User
	companies map[int64]*model.Company
	denylist  map[string]time.Time

	// FailDelete makes DeleteCompany fail, for exercising error paths.
	FailDelete bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:       func() time.Time { return time.Now().UTC() },
		users:     make(map[int64]*model.User),
		companies: make(map[int64]*model.Company),
		denylist:  make(map[string]time.Time),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// CreateUser implements service.UserStore.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	s.nextUser++
	now := s.now()
	user.ID = s.nextUser
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// GetUserByID implements service.UserStore.
func (s *Store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail implements service.UserStore.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// ListCompanies implements service.CompanyStore.
func (s *Store) ListCompanies(_ context.Context, scope model.CompanyScope) ([]*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*model.Company{}
	for _, c := range s.companies {
		if scope.Contains(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCompany implements service.CompanyStore.
func (s *Store) GetCompany(_ context.Context, scope model.CompanyScope, id int64) (*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.companies[id]
	if !ok || !scope.Contains(c) {
		return nil, repository.ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

// CompanyNameExists implements service.CompanyStore.
func (s *Store) CompanyNameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nameTaken(name, excludeID), nil
}

// CreateCompany implements service.CompanyStore.
func (s *Store) CreateCompany(_ context.Context, c *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(c.Name, 0) {
		return repository.ErrCompanyNameTaken
	}
	if _, ok := s.users[c.UserID]; !ok {
		return repository.ErrCompanyOwnerMissing
	}

	s.nextComp++
	now := s.now()
	c.ID = s.nextComp
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

// UpdateCompany implements service.CompanyStore.
func (s *Store) UpdateCompany(_ context.Context, c *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.companies[c.ID]
	if !ok || existing.UserID != c.UserID {
		return repository.ErrCompanyNotFound
	}
	if s.nameTaken(c.Name, c.ID) {
		return repository.ErrCompanyNameTaken
	}

	existing.Name = c.Name
	existing.Year = c.Year
	existing.UpdatedAt = s.now()
	c.UpdatedAt = existing.UpdatedAt
	return nil
}

// DeleteCompany implements service.CompanyStore.
func (s *Store) DeleteCompany(_ context.Context, scope model.CompanyScope, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDelete {
		return errors.New("delete failed")
	}
	c, ok := s.companies[id]
	if !ok || !scope.Contains(c) {
		return repository.ErrCompanyNotFound
	}
	delete(s.companies, id)
	return nil
}

// CompanyCount returns the number of stored companies.
func (s *Store) CompanyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.companies)
}

// DenyToken implements service.TokenDenylist.
func (s *Store) DenyToken(_ context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.denylist[jti]; !ok {
		s.denylist[jti] = exp
	}
	return nil
}

// IsTokenDenied implements service.TokenDenylist.
func (s *Store) IsTokenDenied(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.denylist[jti]
	return ok, nil
}

func (s *Store) nameTaken(name string, excludeID int64) bool {
	for id, c := range s.companies {
		if id != excludeID && c.Name == name {
			return true
		}
	}
	return false
}
