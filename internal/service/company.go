// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/companyhub/companyhub/internal/authz"
	"github.com/companyhub/companyhub/internal/metrics"
	"github.com/companyhub/companyhub/internal/model"
	"github.com/companyhub/companyhub/internal/repository"
)

// Validation messages.
const (
	msgUserMustExist = "User must exist"
	msgNameBlank     = "Name can't be blank"
	msgNameTaken     = "Name has already been taken"
	msgYearBlank     = "Year can't be blank"
)

// CompanyService handles company business logic.
type CompanyService struct {
	companies CompanyStore
	users     UserStore
	guard     Guard
	metrics   metrics.Recorder
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companies CompanyStore, users UserStore, guard Guard, recorder metrics.Recorder) *CompanyService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CompanyService{
		companies: companies,
		users:     users,
		guard:     guard,
		metrics:   recorder,
	}
}

// List returns every company in the principal's accessible scope.
func (s *CompanyService) List(ctx context.Context, p *model.Principal) ([]*model.Company, error) {
	companies, err := s.companies.ListCompanies(ctx, s.guard.AccessibleScope(p))
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// Get looks up a company by id within the principal's scope.
func (s *CompanyService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Company, error) {
	return s.find(ctx, p, authz.ActionRead, id)
}

// Create validates input, checks the principal may own the new record and
// persists it.
func (s *CompanyService) Create(ctx context.Context, p *model.Principal, in model.CompanyInput) (*model.Company, error) {
	c := &model.Company{
		Name: strings.TrimSpace(deref(in.Name)),
		Year: strings.TrimSpace(deref(in.Year)),
	}

	var errs validationErrors
	if in.UserID == nil {
		errs.add(msgUserMustExist)
	} else {
		c.UserID = *in.UserID
		if _, err := s.users.GetUserByID(ctx, c.UserID); err != nil {
			if !errors.Is(err, repository.ErrUserNotFound) {
				return nil, fmt.Errorf("failed to look up owner: %w", err)
			}
			errs.add(msgUserMustExist)
		}
	}
	if err := s.validateAttributes(ctx, c, &errs); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if !s.guard.CanPerform(p, authz.ActionCreate, c) {
		s.metrics.IncAccessDenied(string(authz.ActionCreate))
		return nil, ErrAccessDenied
	}

	if err := s.companies.CreateCompany(ctx, c); err != nil {
		return nil, mapWriteError(err, "create")
	}

	s.metrics.IncCompanyCreated()
	return c, nil
}

// Update changes name and year of a company in scope. A user_id in the
// input is ignored.
func (s *CompanyService) Update(ctx context.Context, p *model.Principal, id int64, in model.CompanyInput) (*model.Company, error) {
	c, err := s.find(ctx, p, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Year != nil {
		c.Year = strings.TrimSpace(*in.Year)
	}

	var errs validationErrors
	if err := s.validateAttributes(ctx, c, &errs); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.companies.UpdateCompany(ctx, c); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, mapWriteError(err, "update")
	}

	s.metrics.IncCompanyUpdated()
	return c, nil
}

// Delete removes a company in scope. Failures other than access are
// reported as ErrDestroyFailed.
func (s *CompanyService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	c, err := s.find(ctx, p, authz.ActionDestroy, id)
	if err != nil {
		return err
	}

	if err := s.companies.DeleteCompany(ctx, s.guard.AccessibleScope(p), c.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDestroyFailed, err)
	}

	s.metrics.IncCompanyDeleted()
	return nil
}

// find loads a company through the scope and then checks action on it.
// Not found and not permitted both yield ErrAccessDenied.
func (s *CompanyService) find(ctx context.Context, p *model.Principal, action authz.Action, id int64) (*model.Company, error) {
	c, err := s.companies.GetCompany(ctx, s.guard.AccessibleScope(p), id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			s.metrics.IncAccessDenied(string(action))
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if !s.guard.CanPerform(p, action, c) {
		s.metrics.IncAccessDenied(string(action))
		return nil, ErrAccessDenied
	}
	return c, nil
}

// validateAttributes checks name and year. Only store failures are returned
// as errors; rule violations go into errs.
func (s *CompanyService) validateAttributes(ctx context.Context, c *model.Company, errs *validationErrors) error {
	if c.Name == "" {
		errs.add(msgNameBlank)
	} else {
		taken, err := s.companies.CompanyNameExists(ctx, c.Name, c.ID)
		if err != nil {
			return fmt.Errorf("failed to check company name: %w", err)
		}
		if taken {
			errs.add(msgNameTaken)
		}
	}
	if c.Year == "" {
		errs.add(msgYearBlank)
	}
	return nil
}

// mapWriteError turns constraint violations that slipped past validation
// (concurrent writers) into validation errors.
func mapWriteError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrCompanyNameTaken):
		return &ValidationError{Messages: []string{msgNameTaken}}
	case errors.Is(err, repository.ErrCompanyOwnerMissing):
		return &ValidationError{Messages: []string{msgUserMustExist}}
	default:
		return fmt.Errorf("failed to %s company: %w", op, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
