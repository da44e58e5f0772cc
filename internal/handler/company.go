package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/companyhub/companyhub/internal/auth"
	"github.com/companyhub/companyhub/internal/handler/dto"
	"github.com/companyhub/companyhub/internal/middleware"
	"github.com/companyhub/companyhub/internal/service"
)

// Response messages for the company endpoints.
const (
	msgNotAuthorized  = "You are not authorized to access this company."
	msgDestroyed      = "Company was successfully destroyed."
	msgDestroyFailed  = "Company could not be destroyed."
	codeAuthorization = "AUTHORIZATION_FAILED"
)

// CompanyHandler handles HTTP requests for company operations.
// Every route requires the Authenticate middleware.
type CompanyHandler struct {
	svc    *service.CompanyService
	logger *slog.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(svc *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/companies.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.List(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCompanyListResponse(companies))
}

// Get handles GET /api/v1/companies/{id}.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.handleServiceError(w, r, service.ErrAccessDenied)
		return
	}

	company, err := h.svc.Get(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCompanyResponse(company))
}

// Create handles POST /api/v1/companies.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CompanyRequest
	if err := decodeBody(r, "company", &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	company, err := h.svc.Create(r.Context(), principal, req.Input())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("company_created",
		"company_id", company.ID,
		"user_id", company.UserID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.ToCompanyResponse(company))
}

// Update handles PATCH and PUT /api/v1/companies/{id}.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.handleServiceError(w, r, service.ErrAccessDenied)
		return
	}

	var req dto.CompanyRequest
	if err := decodeBody(r, "company", &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	company, err := h.svc.Update(r.Context(), auth.PrincipalFromContext(r.Context()), id, req.Input())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("company_updated",
		"company_id", company.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.ToCompanyResponse(company))
}

// Delete handles DELETE /api/v1/companies/{id}.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.handleServiceError(w, r, service.ErrAccessDenied)
		return
	}

	if err := h.svc.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("company_deleted",
		"company_id", id,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: msgDestroyed})
}

// handleServiceError maps service errors to HTTP responses.
func (h *CompanyHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		h.logger.Warn("authorization denied",
			"user_id", auth.UserIDFromContext(r.Context()),
			"endpoint", r.Method+" "+r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.writeError(w, http.StatusUnauthorized, codeAuthorization, msgNotAuthorized)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ValidationErrorResponse{Errors: verr.Messages})
	case errors.Is(err, service.ErrDestroyFailed):
		h.logger.Error("company_destroy_failed", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, dto.MessageResponse{Message: msgDestroyFailed})
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *CompanyHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
