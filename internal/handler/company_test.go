package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/companyhub/companyhub/internal/auth"
	"github.com/companyhub/companyhub/internal/authz"
	"github.com/companyhub/companyhub/internal/handler/dto"
	"github.com/companyhub/companyhub/internal/model"
	"github.com/companyhub/companyhub/internal/service"
	"github.com/companyhub/companyhub/internal/testutil/memstore"
)

const authorizationFailedBody = `{"error":"You are not authorized to access this company.","code":"AUTHORIZATION_FAILED"}`

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type companyFixture struct {
	store  *memstore.Store
	router chi.Router
	alice  *model.Principal
	bob    *model.Principal
}

// asUser marks the request as coming from p, standing in for the
// Authenticate middleware.
func asUser(req *http.Request, p *model.Principal) *http.Request {
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), p))
}

func newCompanyFixture(t *testing.T) *companyFixture {
	t.Helper()

	store := memstore.New()
	ctx := context.Background()
	alice := &model.User{Email: "alice@example.com", EncryptedPassword: "x"}
	require.NoError(t, store.CreateUser(ctx, alice))
	bob := &model.User{Email: "bob@example.com", EncryptedPassword: "x"}
	require.NoError(t, store.CreateUser(ctx, bob))

	svc := service.NewCompanyService(store, store, authz.NewGuard(), nil)
	h := NewCompanyHandler(svc, testLogger)

	r := chi.NewRouter()
	r.Get("/api/v1/companies", h.List)
	r.Post("/api/v1/companies", h.Create)
	r.Get("/api/v1/companies/{id}", h.Get)
	r.Patch("/api/v1/companies/{id}", h.Update)
	r.Put("/api/v1/companies/{id}", h.Update)
	r.Delete("/api/v1/companies/{id}", h.Delete)

	return &companyFixture{
		store:  store,
		router: r,
		alice:  &model.Principal{UserID: alice.ID, Email: alice.Email},
		bob:    &model.Principal{UserID: bob.ID, Email: bob.Email},
	}
}

func (f *companyFixture) do(p *model.Principal, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := asUser(httptest.NewRequest(method, path, reader), p)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *companyFixture) create(t *testing.T, p *model.Principal, name string) dto.CompanyResponse {
	t.Helper()
	body := `{"company":{"name":"` + name + `","year":"2001","user_id":` + strconv.FormatInt(p.UserID, 10) + `}}`
	rec := f.do(p, http.MethodPost, "/api/v1/companies", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c dto.CompanyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func companyPath(id int64) string {
	return "/api/v1/companies/" + strconv.FormatInt(id, 10)
}

func TestCompanyHandler_Create(t *testing.T) {
	f := newCompanyFixture(t)

	c := f.create(t, f.alice, "Acme")
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "2001", c.Year)
	assert.Equal(t, f.alice.UserID, c.UserID)
}

func TestCompanyHandler_CreateBareBodyNumericYear(t *testing.T) {
	f := newCompanyFixture(t)

	body := `{"name":"Globex","year":1989,"user_id":"` + strconv.FormatInt(f.alice.UserID, 10) + `"}`
	rec := f.do(f.alice, http.MethodPost, "/api/v1/companies", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c dto.CompanyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "1989", c.Year)
}

func TestCompanyHandler_CreateValidation(t *testing.T) {
	f := newCompanyFixture(t)
	f.create(t, f.alice, "Acme")

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "everything missing",
			body: `{"company":{}}`,
			want: []string{"User must exist", "Name can't be blank", "Year can't be blank"},
		},
		{
			name: "taken name",
			body: `{"company":{"name":"Acme","year":"1999","user_id":` + strconv.FormatInt(f.alice.UserID, 10) + `}}`,
			want: []string{"Name has already been taken"},
		},
		{
			name: "unknown owner",
			body: `{"company":{"name":"Initech","year":"1999","user_id":999999}}`,
			want: []string{"User must exist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(f.alice, http.MethodPost, "/api/v1/companies", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp dto.ValidationErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Errors)
		})
	}
}

func TestCompanyHandler_CreateForOtherUser(t *testing.T) {
	f := newCompanyFixture(t)

	body := `{"company":{"name":"Hooli","year":"2004","user_id":` + strconv.FormatInt(f.bob.UserID, 10) + `}}`
	rec := f.do(f.alice, http.MethodPost, "/api/v1/companies", body)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, authorizationFailedBody, rec.Body.String())
	assert.Zero(t, f.store.CompanyCount())
}

func TestCompanyHandler_MalformedJSON(t *testing.T) {
	f := newCompanyFixture(t)
	c := f.create(t, f.alice, "Acme")

	rec := f.do(f.alice, http.MethodPost, "/api/v1/companies", `{"company":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(f.alice, http.MethodPatch, companyPath(c.ID), `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyHandler_ListIsScoped(t *testing.T) {
	f := newCompanyFixture(t)
	f.create(t, f.alice, "Acme")
	f.create(t, f.alice, "Initech")
	f.create(t, f.bob, "Hooli")

	rec := f.do(f.alice, http.MethodGet, "/api/v1/companies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []dto.CompanyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Acme", list[0].Name)
	assert.Equal(t, "Initech", list[1].Name)
}

func TestCompanyHandler_ListEmptyIsArray(t *testing.T) {
	f := newCompanyFixture(t)

	rec := f.do(f.alice, http.MethodGet, "/api/v1/companies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCompanyHandler_ShowDenied(t *testing.T) {
	f := newCompanyFixture(t)
	c := f.create(t, f.bob, "Hooli")

	for _, path := range []string{companyPath(c.ID), companyPath(c.ID + 100), "/api/v1/companies/abc"} {
		rec := f.do(f.alice, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, authorizationFailedBody, rec.Body.String(), path)
	}

	rec := f.do(f.bob, http.MethodGet, companyPath(c.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompanyHandler_Update(t *testing.T) {
	f := newCompanyFixture(t)
	c := f.create(t, f.alice, "Acme")

	body := `{"company":{"year":"2010","user_id":` + strconv.FormatInt(f.bob.UserID, 10) + `}}`
	rec := f.do(f.alice, http.MethodPatch, companyPath(c.ID), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got dto.CompanyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "2010", got.Year)
	assert.Equal(t, f.alice.UserID, got.UserID, "ownership must not change")

	rec = f.do(f.alice, http.MethodPut, companyPath(c.ID), `{"name":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors":["Name can't be blank"]}`, rec.Body.String())
}

func TestCompanyHandler_UpdateExplicitNullIsBlank(t *testing.T) {
	f := newCompanyFixture(t)
	c := f.create(t, f.alice, "Acme")

	rec := f.do(f.alice, http.MethodPatch, companyPath(c.ID), `{"company":{"year":null}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"errors":["Year can't be blank"]}`, rec.Body.String())

	rec = f.do(f.alice, http.MethodPatch, companyPath(c.ID), `{"name":null,"year":null}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"errors":["Name can't be blank","Year can't be blank"]}`, rec.Body.String())

	rec = f.do(f.alice, http.MethodGet, companyPath(c.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.CompanyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "2001", got.Year, "rejected update must not be stored")
}

func TestCompanyHandler_UpdateDenied(t *testing.T) {
	f := newCompanyFixture(t)
	c := f.create(t, f.bob, "Hooli")

	rec := f.do(f.alice, http.MethodPatch, companyPath(c.ID), `{"company":{"name":"Mine now"}}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, authorizationFailedBody, rec.Body.String())
}

func TestCompanyHandler_Delete(t *testing.T) {
	f := newCompanyFixture(t)
	c := f.create(t, f.alice, "Acme")

	rec := f.do(f.bob, http.MethodDelete, companyPath(c.ID), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, f.store.CompanyCount())

	rec = f.do(f.alice, http.MethodDelete, companyPath(c.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Company was successfully destroyed."}`, rec.Body.String())
	assert.Zero(t, f.store.CompanyCount())

	rec = f.do(f.alice, http.MethodGet, companyPath(c.ID), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompanyHandler_DeleteFailure(t *testing.T) {
	f := newCompanyFixture(t)
	c := f.create(t, f.alice, "Acme")
	f.store.FailDelete = true

	rec := f.do(f.alice, http.MethodDelete, companyPath(c.ID), "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"message":"Company could not be destroyed."}`, rec.Body.String())
}
