package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/shiftboard/internal"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/google/uuid"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Options struct {
	BCryptCost          int
	BootstrapAdminEmail string
}

// Service is the main auth service with dependencies
type Service struct {
	store     CredentialStore
	tokens    TokenIssuerAPI
	publisher EventPublisher
	opts      Options
	dummyHash string
	logger    *slog.Logger
}

// NewService creates a new auth service. publisher may be nil.
func NewService(store CredentialStore, tokens TokenIssuerAPI, publisher EventPublisher, opts Options, logger *slog.Logger) *Service {
	if opts.BCryptCost == 0 {
		opts.BCryptCost = internal.DefaultBCryptCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	// compared against on unknown emails so both login failures cost one bcrypt round
	dummy, err := HashPassword("shiftboard-timing-equalizer", opts.BCryptCost)
	if err != nil {
		logger.Warn("could not prepare dummy password hash", "error", err)
	}

	return &Service{
		store:     store,
		tokens:    tokens,
		publisher: publisher,
		opts:      opts,
		dummyHash: dummy,
		logger:    logger,
	}
}

// Register creates a local account and returns its public view.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.PublicView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmail(ctx, dto.Email)
	switch {
	case err == nil && existing != nil:
		s.logger.Info("registration rejected: email already registered")
		return nil, internal.ErrDuplicateUser
	case err != nil && !errors.Is(err, ErrUserNotFound):
		s.logger.Error("failed to look up email", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	hash, err := HashPassword(dto.Password, s.opts.BCryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to register user", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        dto.Email,
		PasswordHash: hash,
		Roles:        user.RolesFor(dto.Email, s.opts.BootstrapAdminEmail),
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
	}

	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, internal.ErrDuplicateUser) {
			return nil, internal.ErrDuplicateUser
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	s.publish(ctx, events.NewUserRegisteredEvent(u.ID, "local"))
	s.logger.Info("user registered", "user_id", u.ID, "admin", u.IsAdmin())

	view := u.Public()
	return &view, nil
}

// Login verifies credentials. Unknown email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.store.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			if s.dummyHash != "" {
				_ = VerifyPassword(s.dummyHash, dto.Password)
			}
			s.logger.Info("login failed", "reason", "unknown_email")
			return nil, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for login", "error", err)
		return nil, internal.NewInternalError("failed to log in", err)
	}

	if u.PasswordHash == "" {
		s.logger.Info("login failed", "reason", "no_local_password", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}
	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Info("login failed", "reason", "wrong_password", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	return s.newSession(u)
}

// FederatedLogin resolves a provider identity to a local user, linking or
// provisioning one when needed, and opens a session for it.
func (s *Service) FederatedLogin(ctx context.Context, identity VerifiedIdentity) (*Session, error) {
	if identity.Provider == "" || identity.Subject == "" {
		return nil, internal.NewValidationError("identity provider returned no subject", internal.ErrCodeValidationFailed)
	}

	u, err := s.store.FindByIdentity(ctx, identity.Provider, identity.Subject)
	if err == nil {
		return s.newSession(u)
	}
	if !errors.Is(err, ErrUserNotFound) {
		s.logger.Error("failed to resolve identity", "error", err, "provider", identity.Provider)
		return nil, internal.NewInternalError("failed to log in", err)
	}

	if identity.Email == "" {
		return nil, internal.NewValidationError("identity provider returned no email address", internal.ErrCodeInvalidEmail)
	}

	link := &userDatamodel.Identity{
		Provider: identity.Provider,
		Subject:  identity.Subject,
	}

	existing, err := s.store.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if !identity.EmailVerified {
			s.logger.Warn("refusing to link unverified provider email", "provider", identity.Provider, "user_id", existing.ID)
			return nil, internal.ErrDuplicateUser
		}
		link.UserID = existing.ID
		if err := s.store.LinkIdentity(ctx, link); err != nil {
			if errors.Is(err, internal.ErrDuplicateUser) {
				return s.sessionForLinkedIdentity(ctx, identity, err)
			}
			s.logger.Error("failed to link identity", "error", err, "user_id", existing.ID)
			return nil, internal.NewInternalError("failed to log in", err)
		}
		s.logger.Info("identity linked", "user_id", existing.ID, "provider", identity.Provider)
		return s.newSession(existing)
	case !errors.Is(err, ErrUserNotFound):
		s.logger.Error("failed to look up email", "error", err)
		return nil, internal.NewInternalError("failed to log in", err)
	}

	roles := []string{user.RoleUser}
	if identity.EmailVerified {
		roles = user.RolesFor(identity.Email, s.opts.BootstrapAdminEmail)
	}
	firstName, lastName := identityNames(identity)

	u = &user.User{
		ID:        uuid.NewString(),
		Email:     identity.Email,
		Roles:     roles,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	link.UserID = u.ID
	if err := s.store.CreateWithIdentity(ctx, u, link); err != nil {
		if errors.Is(err, internal.ErrDuplicateUser) {
			return s.sessionForLinkedIdentity(ctx, identity, err)
		}
		s.logger.Error("failed to provision federated user", "error", err, "provider", identity.Provider)
		return nil, internal.NewInternalError("failed to log in", err)
	}

	s.publish(ctx, events.NewUserRegisteredEvent(u.ID, identity.Provider))
	s.logger.Info("federated user provisioned", "user_id", u.ID, "provider", identity.Provider)
	return s.newSession(u)
}

// sessionForLinkedIdentity handles a unique-key conflict while linking or
// provisioning: a concurrent first login for the same identity won, so the
// identity now resolves to that user.
func (s *Service) sessionForLinkedIdentity(ctx context.Context, identity VerifiedIdentity, conflict error) (*Session, error) {
	u, err := s.store.FindByIdentity(ctx, identity.Provider, identity.Subject)
	switch {
	case err == nil:
		s.logger.Info("identity linked concurrently", "user_id", u.ID, "provider", identity.Provider)
		return s.newSession(u)
	case errors.Is(err, ErrUserNotFound):
		// the conflict came from the email, not the identity
		s.logger.Warn("federated email already taken", "provider", identity.Provider, "error", conflict)
		return nil, internal.ErrDuplicateUser
	default:
		s.logger.Error("failed to resolve identity after conflict", "error", err, "provider", identity.Provider)
		return nil, internal.NewInternalError("failed to log in", err)
	}
}

func (s *Service) newSession(u *user.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to issue session token", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      u.Public(),
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// identityNames falls back from given/family names to the display name and
// then to the email local part.
func identityNames(identity VerifiedIdentity) (string, string) {
	first := strings.TrimSpace(identity.FirstName)
	last := strings.TrimSpace(identity.LastName)

	if first == "" || last == "" {
		parts := strings.Fields(identity.DisplayName)
		if first == "" && len(parts) > 0 {
			first = parts[0]
		}
		if last == "" && len(parts) > 1 {
			last = strings.Join(parts[1:], " ")
		}
	}
	if first == "" {
		first = strings.SplitN(identity.Email, "@", 2)[0]
	}
	if last == "" {
		last = first
	}
	return first, last
}
