package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/companyhub/companyhub/internal/handler/dto"
	"github.com/companyhub/companyhub/internal/middleware"
	"github.com/companyhub/companyhub/internal/service"
)

// SessionHandler handles sign in and sign out.
type SessionHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc *service.AuthService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger}
}

// SignIn handles POST /users/sign_in.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := decodeBody(r, "user", &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Code: "INVALID_JSON"})
		return
	}

	session, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("sign_in_failed",
				"ip", r.RemoteAddr,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid email or password."})
			return
		}
		h.logger.Error("sign_in_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "An internal error occurred", Code: "INTERNAL_ERROR"})
		return
	}

	user := dto.ToUserResponse(session.User)
	setSessionHeader(w, session)
	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: dto.Status{
		Code:    http.StatusOK,
		Message: "signed in: " + session.User.Email,
		Data:    &user,
	}})
}

// SignOut handles DELETE /users/sign_out. The bearer token is revoked so
// later requests carrying it are rejected.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.SignOut(r.Context(), middleware.BearerToken(r))
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			writeJSON(w, http.StatusUnauthorized, dto.SignOutResponse{
				Status:  http.StatusUnauthorized,
				Message: "user has no active session",
			})
			return
		}
		h.logger.Error("sign_out_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "An internal error occurred", Code: "INTERNAL_ERROR"})
		return
	}

	h.logger.Info("user_signed_out",
		"user_id", user.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.SignOutResponse{
		Status:  http.StatusOK,
		Message: "signed out user: " + user.Email,
	})
}
