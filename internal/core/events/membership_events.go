package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered      = "user.registered"
	EventTypeMembershipRequested = "membership.requested"
	EventTypeMembershipAccepted  = "membership.accepted"
	EventTypeOrganizationDeleted = "organization.deleted"
)

// AuditedEventTypes lists every event the audit log subscribes to.
var AuditedEventTypes = []string{
	EventTypeUserRegistered,
	EventTypeMembershipRequested,
	EventTypeMembershipAccepted,
	EventTypeOrganizationDeleted,
}

type UserRegisteredEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Source string `json:"source"`
}

func NewUserRegisteredEvent(userID, source string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: newBaseEvent(EventTypeUserRegistered, map[string]interface{}{
			"user_id": userID,
			"source":  source,
		}),
		UserID: userID,
		Source: source,
	}
}

type MembershipEvent struct {
	BaseEvent
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id,omitempty"`
	ActorID        string `json:"actor_id,omitempty"`
}

func NewMembershipRequestedEvent(organizationID, userID string) *MembershipEvent {
	return newMembershipEvent(EventTypeMembershipRequested, organizationID, userID, userID)
}

func NewMembershipAcceptedEvent(organizationID, userID, actorID string) *MembershipEvent {
	return newMembershipEvent(EventTypeMembershipAccepted, organizationID, userID, actorID)
}

func NewOrganizationDeletedEvent(organizationID, actorID string) *MembershipEvent {
	return newMembershipEvent(EventTypeOrganizationDeleted, organizationID, "", actorID)
}

func newMembershipEvent(eventType, organizationID, userID, actorID string) *MembershipEvent {
	return &MembershipEvent{
		BaseEvent: newBaseEvent(eventType, map[string]interface{}{
			"organization_id": organizationID,
			"user_id":         userID,
			"actor_id":        actorID,
		}),
		OrganizationID: organizationID,
		UserID:         userID,
		ActorID:        actorID,
	}
}

func newBaseEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// RegisterAuditLog subscribes a structured audit logger to every audited event.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := logger.With("component", "audit")
	for _, eventType := range AuditedEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
			args := []any{
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"occurred_at", event.OccurredAt(),
			}
			if data, ok := event.Payload().(map[string]interface{}); ok {
				for k, v := range data {
					if s, isString := v.(string); isString && s == "" {
						continue
					}
					args = append(args, k, v)
				}
			}
			audit.InfoContext(ctx, "audit event", args...)
			return nil
		})
	}
}
