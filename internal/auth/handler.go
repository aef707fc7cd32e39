package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/internal/user"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*user.PublicView, error)
	Login(ctx context.Context, dto LoginDTO) (*Session, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Cookie  CookieConfig
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, cookie CookieConfig) *Handler {
	if base == nil {
		base = transport.NewBaseHandler(nil)
	}
	return &Handler{
		BaseHandler: base,
		Service:     svc,
		Cookie:      cookie,
	}
}

// Register handles POST /users/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, r, internal.ErrInvalidBody)
		return
	}

	view, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, view)
}

// Login handles POST /users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, r, internal.ErrInvalidBody)
		return
	}

	session, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Cookie.Set(w, session.Token, session.ExpiresAt)
	h.WriteJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    session.User,
		Token:   session.Token,
	})
}

// Logout handles POST /users/logout. Tokens stay valid until expiry; only the
// cookie is dropped.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookie.Clear(w)
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
