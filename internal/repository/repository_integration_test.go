//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/companyhub/companyhub/internal/model"
	"github.com/companyhub/companyhub/internal/testutil"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	ctx, pool := newMigrationTestEnv(t)
	if err := testutil.TruncateAll(ctx, pool); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewFromPool(pool)
}

func createTestUser(t *testing.T, r *Repository, email string) *model.User {
	t.Helper()

	u := &model.User{Email: email, EncryptedPassword: "$argon2id$placeholder"}
	if err := r.CreateUser(t.Context(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestIntegrationUser_CreateAndGet(t *testing.T) {
	r := newTestRepository(t)
	ctx := t.Context()

	u := createTestUser(t, r, "first@example.com")
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps to be filled, got %+v", u)
	}

	byID, err := r.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != "first@example.com" || byID.EncryptedPassword == "" {
		t.Errorf("unexpected user %+v", byID)
	}

	if _, err := r.GetUserByEmail(ctx, "first@example.com"); err != nil {
		t.Errorf("GetUserByEmail: %v", err)
	}

	if _, err := r.GetUserByID(ctx, u.ID+100); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	dup := &model.User{Email: "first@example.com", EncryptedPassword: "x"}
	if err := r.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestIntegrationCompany_CRUDWithinScope(t *testing.T) {
	r := newTestRepository(t)
	ctx := t.Context()

	owner := createTestUser(t, r, "owner@example.com")
	other := createTestUser(t, r, "other@example.com")
	ownerScope := model.CompanyScope{UserID: owner.ID}
	otherScope := model.CompanyScope{UserID: other.ID}

	c := &model.Company{Name: "Acme", Year: "1999", UserID: owner.ID}
	if err := r.CreateCompany(ctx, c); err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}

	got, err := r.GetCompany(ctx, ownerScope, c.ID)
	if err != nil {
		t.Fatalf("GetCompany: %v", err)
	}
	if got.Name != "Acme" || got.Year != "1999" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := r.GetCompany(ctx, otherScope, c.ID); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("expected out-of-scope read to be not found, got %v", err)
	}

	list, err := r.ListCompanies(ctx, otherScope)
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list for other owner, got %d", len(list))
	}

	got.Name = "Acme Corp"
	got.UserID = owner.ID
	if err := r.UpdateCompany(ctx, got); err != nil {
		t.Fatalf("UpdateCompany: %v", err)
	}

	stolen := *got
	stolen.UserID = other.ID
	if err := r.UpdateCompany(ctx, &stolen); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("expected update by other owner to be not found, got %v", err)
	}

	if err := r.DeleteCompany(ctx, otherScope, c.ID); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("expected delete by other owner to be not found, got %v", err)
	}
	if err := r.DeleteCompany(ctx, ownerScope, c.ID); err != nil {
		t.Fatalf("DeleteCompany: %v", err)
	}
	if _, err := r.GetCompany(ctx, ownerScope, c.ID); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("expected deleted company to be gone, got %v", err)
	}
}

func TestIntegrationCompany_Constraints(t *testing.T) {
	r := newTestRepository(t)
	ctx := t.Context()

	owner := createTestUser(t, r, "owner@example.com")

	if err := r.CreateCompany(ctx, &model.Company{Name: "Unique", Year: "2001", UserID: owner.ID}); err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}

	err := r.CreateCompany(ctx, &model.Company{Name: "Unique", Year: "2002", UserID: owner.ID})
	if !errors.Is(err, ErrCompanyNameTaken) {
		t.Errorf("expected ErrCompanyNameTaken, got %v", err)
	}

	err = r.CreateCompany(ctx, &model.Company{Name: "Orphan", Year: "2003", UserID: owner.ID + 999})
	if !errors.Is(err, ErrCompanyOwnerMissing) {
		t.Errorf("expected ErrCompanyOwnerMissing, got %v", err)
	}

	exists, err := r.CompanyNameExists(ctx, "Unique", 0)
	if err != nil || !exists {
		t.Errorf("expected name to exist, got %v, %v", exists, err)
	}

	list, err := r.ListCompanies(ctx, model.CompanyScope{UserID: owner.ID})
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected exactly one company, got %d", len(list))
	}
}

func TestIntegrationDenylist(t *testing.T) {
	r := newTestRepository(t)
	ctx := t.Context()
	now := time.Now().UTC()

	if err := r.DenyToken(ctx, "jti-live", now.Add(time.Hour)); err != nil {
		t.Fatalf("DenyToken: %v", err)
	}
	if err := r.DenyToken(ctx, "jti-live", now.Add(time.Hour)); err != nil {
		t.Fatalf("DenyToken twice: %v", err)
	}
	if err := r.DenyToken(ctx, "jti-old", now.Add(-time.Hour)); err != nil {
		t.Fatalf("DenyToken: %v", err)
	}

	denied, err := r.IsTokenDenied(ctx, "jti-live")
	if err != nil || !denied {
		t.Errorf("expected jti-live denied, got %v, %v", denied, err)
	}

	removed, err := r.PruneDenylist(ctx, now)
	if err != nil {
		t.Fatalf("PruneDenylist: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned row, got %d", removed)
	}

	denied, err = r.IsTokenDenied(ctx, "jti-old")
	if err != nil || denied {
		t.Errorf("expected jti-old pruned, got %v, %v", denied, err)
	}
}
