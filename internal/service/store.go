package service

import (
	"context"
	"time"

	"github.com/companyhub/companyhub/internal/authz"
	"github.com/companyhub/companyhub/internal/model"
)

// CompanyStore persists companies. *repository.Repository implements it.
type CompanyStore interface {
	ListCompanies(ctx context.Context, scope model.CompanyScope) ([]*model.Company, error)
	GetCompany(ctx context.Context, scope model.CompanyScope, id int64) (*model.Company, error)
	CompanyNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CreateCompany(ctx context.Context, c *model.Company) error
	UpdateCompany(ctx context.Context, c *model.Company) error
	DeleteCompany(ctx context.Context, scope model.CompanyScope, id int64) error
}

// UserStore persists users. *repository.Repository implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenDenylist records revoked session tokens.
type TokenDenylist interface {
	DenyToken(ctx context.Context, jti string, exp time.Time) error
	IsTokenDenied(ctx context.Context, jti string) (bool, error)
}

// Guard decides what a principal may see and do.
type Guard interface {
	AccessibleScope(p *model.Principal) model.CompanyScope
	CanPerform(p *model.Principal, action authz.Action, c *model.Company) bool
}
