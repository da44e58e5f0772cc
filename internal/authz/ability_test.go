package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/companyhub/companyhub/internal/model"
)

func TestAbility_Can(t *testing.T) {
	t.Parallel()

	owner := &model.Principal{UserID: 1, Email: "owner@example.com"}
	stranger := &model.Principal{UserID: 2, Email: "stranger@example.com"}
	company := &model.Company{ID: 10, Name: "Acme", Year: "1999", UserID: 1}

	actions := []Action{ActionRead, ActionCreate, ActionUpdate, ActionDestroy, ActionManage}

	for _, action := range actions {
		t.Run(string(action), func(t *testing.T) {
			t.Parallel()
			assert.True(t, For(owner).Can(action, company), "owner")
			assert.False(t, For(stranger).Can(action, company), "stranger")
			assert.False(t, For(nil).Can(action, company), "anonymous")
		})
	}
}

func TestAbility_CannotActOnNil(t *testing.T) {
	t.Parallel()

	assert.False(t, For(&model.Principal{UserID: 1}).Can(ActionRead, nil))
}

func TestAbility_AccessibleScope(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.CompanyScope{UserID: 5}, For(&model.Principal{UserID: 5}).AccessibleScope())
	assert.True(t, For(nil).AccessibleScope().Empty())
}

func TestAbility_ScopeAgreesWithCan(t *testing.T) {
	t.Parallel()

	p := &model.Principal{UserID: 3}
	a := For(p)
	scope := a.AccessibleScope()

	for _, c := range []*model.Company{
		{ID: 1, UserID: 3},
		{ID: 2, UserID: 4},
		{ID: 3, UserID: 0},
	} {
		assert.Equal(t, a.Can(ActionRead, c), scope.Contains(c), "company %d", c.ID)
	}
}

func TestAbility_ActionSpecificRule(t *testing.T) {
	t.Parallel()

	a := &Ability{}
	a.Allow(Condition{UserID: 8}, ActionRead)
	c := &model.Company{ID: 1, UserID: 8}

	assert.True(t, a.Can(ActionRead, c))
	assert.False(t, a.Can(ActionUpdate, c))
	assert.False(t, a.Can(ActionDestroy, c))
}

func TestGuard(t *testing.T) {
	t.Parallel()

	g := NewGuard()
	p := &model.Principal{UserID: 4}

	assert.Equal(t, model.CompanyScope{UserID: 4}, g.AccessibleScope(p))
	assert.True(t, g.CanPerform(p, ActionUpdate, &model.Company{UserID: 4}))
	assert.False(t, g.CanPerform(p, ActionUpdate, &model.Company{UserID: 5}))
}
