package organization

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateOrganization(ctx context.Context, ownerID string, dto CreateOrganizationDTO) (*View, error)
	ListOrganizations(ctx context.Context) ([]Summary, error)
	GetOrganization(ctx context.Context, organizationID string) (*View, error)
	RequestToJoin(ctx context.Context, userID, organizationID string) (*MembershipAck, error)
	AcceptEmployee(ctx context.Context, actorID, organizationID, userID string) (*View, error)
	GetEmployees(ctx context.Context, organizationID string) ([]user.PublicView, error)
	DeleteOrganization(ctx context.Context, actorID, organizationID string) error
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

// CreateOrganization handles POST /organization
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var dto CreateOrganizationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, r, internal.ErrInvalidBody)
		return
	}

	view, err := h.Service.CreateOrganization(r.Context(), userID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, view)
}

// ListOrganizations handles GET /organization
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Service.ListOrganizations(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, orgs)
}

// GetOrganization handles GET /organization/{oid}
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetOrganization(r.Context(), chi.URLParam(r, "oid"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// RequestToJoin handles POST /organization/{oid}/bePart
func (h *Handler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	ack, err := h.Service.RequestToJoin(r.Context(), userID, chi.URLParam(r, "oid"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ack)
}

// AcceptEmployee handles PUT /organization/{oid}/{uid}
func (h *Handler) AcceptEmployee(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.caller(w, r)
	if !ok {
		return
	}

	view, err := h.Service.AcceptEmployee(r.Context(), actorID, chi.URLParam(r, "oid"), chi.URLParam(r, "uid"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// GetEmployees handles GET /organization/{oid}/employees
func (h *Handler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.GetEmployees(r.Context(), chi.URLParam(r, "oid"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, employees)
}

// DeleteOrganization handles DELETE /organization/{oid}
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteOrganization(r.Context(), actorID, chi.URLParam(r, "oid")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DeleteResponse{Message: "Organization deleted"})
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrMissingToken)
		return "", false
	}
	return userID, true
}
