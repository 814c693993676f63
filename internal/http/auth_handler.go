package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/sirupsen/logrus"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Logout(ctx context.Context, id *auth.Identity) error
	DeleteAccount(ctx context.Context, id *auth.Identity) error
}

// AuthHandler serves registration, login and the session-ending endpoints.
type AuthHandler struct {
	users        UserService
	tokenTTL     time.Duration
	cookieSecure bool
	timeout      time.Duration
	log          logrus.FieldLogger
}

func NewAuthHandler(users UserService, tokenTTL time.Duration, cookieSecure bool, timeout time.Duration, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		users:        users,
		tokenTTL:     tokenTTL,
		cookieSecure: cookieSecure,
		timeout:      timeout,
		log:          log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, h.log, fmt.Errorf("%w: invalid JSON body", service.ErrValidation))
		return
	}

	user, err := h.users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, UserMessageResponse{
		Message: "User created successfully.",
		User:    toUserResponse(user),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, h.log, fmt.Errorf("%w: invalid JSON body", service.ErrValidation))
		return
	}

	session, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	setSessionCookie(w, session.Token, h.tokenTTL, h.cookieSecure)
	respondJSON(w, http.StatusOK, UserMessageResponse{
		Message:   "Login successful.",
		User:      toUserResponse(session.User),
		ExpiresAt: &session.ExpiresAt,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := getIdentity(r.Context())
	if identity == nil {
		handleError(w, r, h.log, service.ErrUnauthenticated)
		return
	}

	if err := h.users.Logout(ctx, identity); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	clearSessionCookie(w, h.cookieSecure)
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully."})
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := getIdentity(r.Context())
	if identity == nil {
		handleError(w, r, h.log, service.ErrUnauthenticated)
		return
	}

	if err := h.users.DeleteAccount(ctx, identity); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	clearSessionCookie(w, h.cookieSecure)
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Account deleted successfully."})
}
