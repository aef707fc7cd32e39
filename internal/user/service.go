package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, u *User) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetByID returns the public view of a user or ErrUserNotFound.
func (s *Service) GetByID(ctx context.Context, userID string) (*PublicView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := u.Public()
	return &view, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := u.Profile()
	return &profile, nil
}

// UpdateProfile merges dto into the stored user. Only the user themself or a
// global Admin may do this.
func (s *Service) UpdateProfile(ctx context.Context, actorID, userID string, dto UpdateProfileDTO) (*PublicView, error) {
	if actorID != userID {
		actor, err := s.load(ctx, actorID)
		if err != nil && !errors.Is(err, internal.ErrUserNotFound) {
			return nil, err
		}
		if actor == nil || !actor.IsAdmin() {
			s.logger.Warn("profile update denied", "actor_id", actorID, "user_id", userID)
			return nil, internal.ErrProfileForbidden
		}
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if dto.Empty() {
		view := u.Public()
		return &view, nil
	}

	dto.ApplyTo(u)
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to update profile", err)
	}

	s.logger.Info("profile updated", "user_id", userID, "actor_id", actorID)
	view := u.Public()
	return &view, nil
}

func (s *Service) load(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.Error("failed to load user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return u, nil
}
