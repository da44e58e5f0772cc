package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/companyhub/companyhub/internal/handler/dto"
	"github.com/companyhub/companyhub/internal/middleware"
	"github.com/companyhub/companyhub/internal/service"
)

// RegistrationHandler handles POST /users/sign_up.
type RegistrationHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(svc *service.AuthService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, logger: logger}
}

// SignUp registers a user and returns its session token in the
// Authorization response header.
func (h *RegistrationHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := decodeBody(r, "user", &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Code: "INVALID_JSON"})
		return
	}

	session, err := h.svc.SignUp(r.Context(), service.SignUpInput{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.StatusResponse{Status: dto.Status{
				Message: "operation failed",
				Errors:  verr.Messages,
			}})
			return
		}
		h.logger.Error("sign_up_failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "An internal error occurred", Code: "INTERNAL_ERROR"})
		return
	}

	h.logger.Info("user_signed_up",
		"user_id", session.User.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	user := dto.ToUserResponse(session.User)
	setSessionHeader(w, session)
	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: dto.Status{
		Code:    http.StatusOK,
		Message: "signed up successfully",
		Data:    &user,
	}})
}

func setSessionHeader(w http.ResponseWriter, s *service.Session) {
	w.Header().Set("Authorization", "Bearer "+s.Token)
}
