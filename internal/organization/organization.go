package organization

import (
	"time"

	orgDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/organization"
)

// Membership states. NONE is the absence of a row.
const (
	StatusPending = "pending"
	StatusMember  = "member"
)

type Organization struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// View is an organization together with its two membership sets.
type View struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	OwnerID         string    `json:"owner"`
	Members         []string  `json:"members"`
	PendingRequests []string  `json:"pendingRequests"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Summary struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MembershipAck struct {
	Message        string `json:"message"`
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
	Status         string `json:"status"`
}

func (o *Organization) Summary() Summary {
	return Summary{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		OwnerID:     o.OwnerID,
		CreatedAt:   o.CreatedAt,
	}
}

func (o *Organization) View(members, pending []string) View {
	if members == nil {
		members = []string{}
	}
	if pending == nil {
		pending = []string{}
	}
	return View{
		ID:              o.ID,
		Name:            o.Name,
		Description:     o.Description,
		OwnerID:         o.OwnerID,
		Members:         members,
		PendingRequests: pending,
		CreatedAt:       o.CreatedAt,
	}
}

func ToDataModel(o *Organization) *orgDatamodel.Organization {
	return &orgDatamodel.Organization{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		OwnerID:     o.OwnerID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func FromDataModel(o *orgDatamodel.Organization) *Organization {
	return &Organization{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		OwnerID:     o.OwnerID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
