package authz

import "github.com/companyhub/companyhub/internal/model"

// Guard adapts Ability to the service layer.
type Guard struct{}

// NewGuard returns the production guard.
func NewGuard() Guard {
	return Guard{}
}

// AccessibleScope returns the company filter for p.
func (Guard) AccessibleScope(p *model.Principal) model.CompanyScope {
	return For(p).AccessibleScope()
}

// CanPerform reports whether p may perform action on company.
func (Guard) CanPerform(p *model.Principal, action Action, company *model.Company) bool {
	return For(p).Can(action, company)
}
