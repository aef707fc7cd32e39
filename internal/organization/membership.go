package organization

import (
	"context"
	"errors"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/user"
)

// RequestToJoin moves the pair NONE -> PENDING. A repeated request while
// pending is acknowledged without creating a second row.
func (s *Service) RequestToJoin(ctx context.Context, userID, organizationID string) (*MembershipAck, error) {
	if _, err := s.find(ctx, organizationID); err != nil {
		return nil, err
	}

	created, err := s.repo.InsertPendingRequest(ctx, organizationID, userID)
	if errors.Is(err, internal.ErrUserNotFound) {
		// the organization may have been deleted since the lookup above
		if _, findErr := s.find(ctx, organizationID); findErr != nil {
			return nil, findErr
		}
		s.logger.Warn("join request from unknown user", "organization_id", organizationID, "user_id", userID)
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("failed to record join request", "error", err, "organization_id", organizationID, "user_id", userID)
		return nil, internal.NewInternalError("failed to request membership", err)
	}

	if !created {
		status, err := s.repo.MembershipStatus(ctx, organizationID, userID)
		if err != nil {
			return nil, internal.NewInternalError("failed to request membership", err)
		}
		if status == StatusMember {
			return nil, internal.ErrAlreadyMember
		}
		s.logger.Debug("join request already pending", "organization_id", organizationID, "user_id", userID)
	} else {
		s.publish(ctx, events.NewMembershipRequestedEvent(organizationID, userID))
		s.logger.Info("join request recorded", "organization_id", organizationID, "user_id", userID)
	}

	return &MembershipAck{
		Message:        "Request sent",
		OrganizationID: organizationID,
		UserID:         userID,
		Status:         StatusPending,
	}, nil
}

// AcceptEmployee moves the pair PENDING -> MEMBER. The capability check runs
// before any write; the transition itself is a single conditional update so
// concurrent accepts of the same request succeed exactly once.
func (s *Service) AcceptEmployee(ctx context.Context, actorID, organizationID, userID string) (*View, error) {
	org, err := s.find(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, org, actorID); err != nil {
		return nil, err
	}

	promoted, err := s.repo.PromotePending(ctx, organizationID, userID, actorID)
	if err != nil {
		s.logger.Error("failed to accept employee", "error", err, "organization_id", organizationID, "user_id", userID)
		return nil, internal.NewInternalError("failed to accept employee", err)
	}

	if !promoted {
		status, err := s.repo.MembershipStatus(ctx, organizationID, userID)
		if err != nil {
			return nil, internal.NewInternalError("failed to accept employee", err)
		}
		if status == StatusMember {
			return nil, internal.ErrAlreadyMember
		}
		return nil, internal.ErrPendingRequestNotFound
	}

	s.publish(ctx, events.NewMembershipAcceptedEvent(organizationID, userID, actorID))
	s.logger.Info("employee accepted", "organization_id", organizationID, "user_id", userID, "actor_id", actorID)

	return s.view(ctx, org)
}

// GetEmployees lists the organization's members in acceptance order.
func (s *Service) GetEmployees(ctx context.Context, organizationID string) ([]user.PublicView, error) {
	if _, err := s.find(ctx, organizationID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to list employees", err)
	}

	views := make([]user.PublicView, 0, len(members))
	for _, m := range members {
		views = append(views, m.Public())
	}
	return views, nil
}

// DeleteOrganization removes the organization and every membership row.
// Users are untouched.
func (s *Service) DeleteOrganization(ctx context.Context, actorID, organizationID string) error {
	org, err := s.find(ctx, organizationID)
	if err != nil {
		return err
	}
	if err := s.requireManager(ctx, org, actorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, organizationID); err != nil {
		if errors.Is(err, internal.ErrOrganizationNotFound) {
			return err
		}
		s.logger.Error("failed to delete organization", "error", err, "organization_id", organizationID)
		return internal.NewInternalError("failed to delete organization", err)
	}

	s.publish(ctx, events.NewOrganizationDeletedEvent(organizationID, actorID))
	s.logger.Info("organization deleted", "organization_id", organizationID, "actor_id", actorID)
	return nil
}
