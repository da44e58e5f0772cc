// Package authz evaluates what a principal may do with companies.
//
// An Ability is a list of rules. Each rule grants a set of actions on
// companies that satisfy its condition. Scopes for list queries are derived
// from the same conditions, so a record is listed exactly when it can be read.
package authz

import (
	"github.com/companyhub/companyhub/internal/model"
)

// Action names an operation on a company.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"
	// ActionManage matches every action.
	ActionManage Action = "manage"
)

// Condition restricts a rule to companies owned by one user.
type Condition struct {
	UserID int64
}

// Scope is the query filter selecting exactly the companies c matches.
func (c Condition) Scope() model.CompanyScope {
	return model.CompanyScope{UserID: c.UserID}
}

func (c Condition) matches(company *model.Company) bool {
	return c.Scope().Contains(company)
}

// Rule grants actions on companies satisfying Condition.
type Rule struct {
	Actions   []Action
	Condition Condition
}

func (r Rule) grants(action Action) bool {
	for _, a := range r.Actions {
		if a == ActionManage || a == action {
			return true
		}
	}
	return false
}

// Ability holds the rules that apply to one principal.
type Ability struct {
	rules []Rule
}

// For builds the default ability: a signed-in user manages the companies
// they own. A nil principal gets no rules.
func For(p *model.Principal) *Ability {
	a := &Ability{}
	if p == nil || p.UserID <= 0 {
		return a
	}
	a.Allow(Condition{UserID: p.UserID}, ActionManage)
	return a
}

// Allow appends a rule.
func (a *Ability) Allow(cond Condition, actions ...Action) {
	a.rules = append(a.rules, Rule{Actions: actions, Condition: cond})
}

// Can reports whether action is permitted on company.
func (a *Ability) Can(action Action, company *model.Company) bool {
	for _, r := range a.rules {
		if r.grants(action) && r.Condition.matches(company) {
			return true
		}
	}
	return false
}

// AccessibleScope returns the query filter for records the principal may
// read. Only the first readable rule contributes; the default ability has one.
func (a *Ability) AccessibleScope() model.CompanyScope {
	for _, r := range a.rules {
		if r.grants(ActionRead) {
			return r.Condition.Scope()
		}
	}
	return model.CompanyScope{}
}
