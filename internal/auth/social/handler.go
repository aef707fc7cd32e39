package social

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/go-chi/chi"
)

const (
	stateCookieName = "oauth_state"
	stateTTL        = 10 * time.Minute
)

type Authenticator interface {
	FederatedLogin(ctx context.Context, identity auth.VerifiedIdentity) (*auth.Session, error)
}

type Handler struct {
	*transport.BaseHandler
	providers map[string]*Provider
	service   Authenticator
	cookie    auth.CookieConfig
}

func NewHandler(base *transport.BaseHandler, svc Authenticator, cookie auth.CookieConfig, providers ...*Provider) *Handler {
	if base == nil {
		base = transport.NewBaseHandler(nil)
	}
	byName := make(map[string]*Provider, len(providers))
	for _, p := range providers {
		if p != nil {
			byName[p.Name] = p
		}
	}
	return &Handler{
		BaseHandler: base,
		providers:   byName,
		service:     svc,
		cookie:      cookie,
	}
}

// Start handles GET /users/auth/{provider}
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		h.HandleServiceError(w, r, internal.ErrProviderNotFound)
		return
	}

	state, err := auth.GenerateRandomToken()
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, h.stateCookie(state, int(stateTTL.Seconds())))
	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /users/auth/{provider}/callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		h.HandleServiceError(w, r, internal.ErrProviderNotFound)
		return
	}

	expected := h.ExtractTokenFromCookie(r, stateCookieName)
	got := r.URL.Query().Get("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		h.HandleServiceError(w, r, internal.ErrInvalidState)
		return
	}
	http.SetCookie(w, h.stateCookie("", -1))

	if providerErr := r.URL.Query().Get("error"); providerErr != "" {
		h.HandleServiceError(w, r, internal.NewUnauthorizedError(provider.Label+" login was not completed", internal.ErrCodeProviderFailed))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.HandleServiceError(w, r, internal.NewValidationError("missing authorization code", internal.ErrCodeValidationFailed))
		return
	}

	identity, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.HandleServiceError(w, r, internal.NewExternalError(provider.Label+" login failed", internal.ErrCodeProviderFailed, err))
		return
	}

	session, err := h.service.FederatedLogin(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.cookie.Set(w, session.Token, session.ExpiresAt)
	h.WriteJSON(w, http.StatusOK, auth.LoginResponse{
		Message: provider.Label + " login success",
		User:    session.User,
		Token:   session.Token,
	})
}

func (h *Handler) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
