package user

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID string) (*PublicView, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, actorID, userID string, dto UpdateProfileDTO) (*PublicView, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	if base == nil {
		base = transport.NewBaseHandler(nil)
	}
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

// GetProfile handles GET /users/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrMissingToken)
		return
	}

	profile, err := h.Service.GetProfile(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /users/profile/{uid}
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actorID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrMissingToken)
		return
	}

	var dto UpdateProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("UpdateProfile: invalid request body", "error", err)
		h.HandleServiceError(w, r, internal.ErrInvalidBody)
		return
	}

	view, err := h.Service.UpdateProfile(r.Context(), actorID, chi.URLParam(r, "uid"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

// GetUser handles GET /users/{uid}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}
