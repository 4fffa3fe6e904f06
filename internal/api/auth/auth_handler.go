package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aura-analytics/aura-backend/internal/api"
)

// HandlerImpl translates HTTP requests into auth service calls and maps
// domain errors onto status codes.
type HandlerImpl struct {
	service AuthService
	logger  *slog.Logger
	mode    string
}

func NewAuthHandler(service AuthService, logger *slog.Logger, mode string) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
		mode:    mode,
	}
}

// Register handles POST /auth/register.
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := ValidateRegisterRequest(&req); err != nil {
		var ve *api.ValidationError
		if errors.As(err, &ve) {
			api.ValidationErrorResponse(w, r, ve)
			return
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "User with this email already exists")
			return
		}
		h.internalError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, api.Response{
		Success: true,
		Message: "User registered successfully",
		Data:    resp,
	})
}

// Login handles POST /auth/login.
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := ValidateLoginRequest(&req); err != nil {
		var ve *api.ValidationError
		if errors.As(err, &ve) {
			api.ValidationErrorResponse(w, r, ve)
			return
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthenticated):
			// Identical message for unknown email and wrong password.
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, api.ErrAccountDisabled):
			api.ErrorResponse(w, r, http.StatusForbidden, "Account is deactivated. Please contact support.")
		default:
			h.internalError(w, r, l, err)
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}

// GetMe handles GET /auth/me. Identity comes from the authentication
// middleware, never from client-supplied claims.
func (h *HandlerImpl) GetMe(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "GetMe"))

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "User not authenticated")
		return
	}

	user, err := h.service.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Data:    user,
	})
}

// internalError logs the full error server-side and returns a generic message
// in production mode.
func (h *HandlerImpl) internalError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	l.ErrorContext(r.Context(), "Unexpected error", slog.Any("error", err))
	msg := "Internal Server Error"
	if h.mode == "development" {
		msg = err.Error()
	}
	api.ErrorResponse(w, r, http.StatusInternalServerError, msg)
}
