package organization

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/google/uuid"
)

// Repository is the persistence port for organizations and their memberships.
type Repository interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
	Delete(ctx context.Context, id string) error

	MemberIDs(ctx context.Context, organizationID, status string) ([]string, error)
	ListMembers(ctx context.Context, organizationID string) ([]*user.User, error)
	MembershipStatus(ctx context.Context, organizationID, userID string) (string, error)
	// InsertPendingRequest reports false when a row for the pair already exists.
	InsertPendingRequest(ctx context.Context, organizationID, userID string) (bool, error)
	// PromotePending flips pending to member in one conditional statement and
	// reports whether this call made the transition.
	PromotePending(ctx context.Context, organizationID, userID, actorID string) (bool, error)
}

// CapabilityChecker decides whether a user holds admin rights over an organization.
type CapabilityChecker interface {
	CanManage(ctx context.Context, organizationID, userID string) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo         Repository
	capabilities CapabilityChecker
	publisher    EventPublisher
	logger       *slog.Logger
}

// NewService wires the registry and membership workflow. publisher may be nil.
func NewService(repo Repository, capabilities CapabilityChecker, publisher EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		capabilities: capabilities,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *Service) CreateOrganization(ctx context.Context, ownerID string, dto CreateOrganizationDTO) (*View, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	org := &Organization{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		s.logger.Error("failed to create organization", "error", err, "owner_id", ownerID)
		return nil, internal.NewInternalError("failed to create organization", err)
	}

	s.logger.Info("organization created", "organization_id", org.ID, "owner_id", ownerID)
	view := org.View(nil, nil)
	return &view, nil
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Summary, error) {
	orgs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, internal.NewInternalError("failed to list organizations", err)
	}

	summaries := make([]Summary, 0, len(orgs))
	for _, o := range orgs {
		summaries = append(summaries, o.Summary())
	}
	return summaries, nil
}

func (s *Service) GetOrganization(ctx context.Context, organizationID string) (*View, error) {
	org, err := s.find(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, org)
}

func (s *Service) find(ctx context.Context, organizationID string) (*Organization, error) {
	org, err := s.repo.GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, internal.ErrOrganizationNotFound) {
			return nil, internal.ErrOrganizationNotFound
		}
		s.logger.Error("failed to load organization", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to load organization", err)
	}
	return org, nil
}

func (s *Service) view(ctx context.Context, org *Organization) (*View, error) {
	members, err := s.repo.MemberIDs(ctx, org.ID, StatusMember)
	if err != nil {
		return nil, internal.NewInternalError("failed to load organization members", err)
	}
	pending, err := s.repo.MemberIDs(ctx, org.ID, StatusPending)
	if err != nil {
		return nil, internal.NewInternalError("failed to load pending requests", err)
	}
	view := org.View(members, pending)
	return &view, nil
}

// requireManager fails with ErrOrganizationForbidden unless actorID may administer org.
func (s *Service) requireManager(ctx context.Context, org *Organization, actorID string) error {
	if actorID != "" && actorID == org.OwnerID {
		return nil
	}
	allowed, err := s.capabilities.CanManage(ctx, org.ID, actorID)
	if err != nil {
		s.logger.Error("capability check failed", "error", err, "organization_id", org.ID, "actor_id", actorID)
		return internal.NewInternalError("failed to check permissions", err)
	}
	if !allowed {
		s.logger.Warn("organization admin action denied", "organization_id", org.ID, "actor_id", actorID)
		return internal.ErrOrganizationForbidden
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
