package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/user"
	"gorm.io/gorm"
)

// CredentialRepository stores users and linked provider identities.
type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *CredentialRepository) FindByIdentity(ctx context.Context, provider, subject string) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_identities ON user_identities.user_id = users.id").
		Where("user_identities.provider = ? AND user_identities.subject = ?", provider, subject).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

// Create inserts u; a unique email violation maps to ErrDuplicateUser.
func (r *CredentialRepository) Create(ctx context.Context, u *user.User) error {
	row := user.ToDataModel(u)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err)
	}
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *CredentialRepository) CreateWithIdentity(ctx context.Context, u *user.User, identity *userDatamodel.Identity) error {
	row := user.ToDataModel(u)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		identity.UserID = row.ID
		return tx.Create(identity).Error
	})
	if err != nil {
		return translate(err)
	}
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *CredentialRepository) LinkIdentity(ctx context.Context, identity *userDatamodel.Identity) error {
	return translate(r.db.WithContext(ctx).Create(identity).Error)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateUser
	}
	return err
}
