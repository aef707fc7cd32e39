package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	orgDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/organization"
	"github.com/frahmantamala/shiftboard/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, o *organization.Organization) error {
	row := organization.ToDataModel(o)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	o.CreatedAt = row.CreatedAt
	o.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*organization.Organization, error) {
	var row orgDatamodel.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrOrganizationNotFound
		}
		return nil, err
	}
	return organization.FromDataModel(&row), nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]*organization.Organization, error) {
	var rows []*orgDatamodel.Organization
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	orgs := make([]*organization.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, organization.FromDataModel(row))
	}
	return orgs, nil
}

// Delete removes memberships and the organization in one transaction.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).Delete(&orgDatamodel.Membership{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&orgDatamodel.Organization{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrOrganizationNotFound
		}
		return nil
	})
}

func (r *OrganizationRepository) MemberIDs(ctx context.Context, organizationID, status string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&orgDatamodel.Membership{}).
		Where("organization_id = ? AND status = ?", organizationID, status).
		Order("id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *OrganizationRepository) ListMembers(ctx context.Context, organizationID string) ([]*user.User, error) {
	var rows []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Select("users.*").
		Joins("JOIN organization_memberships ON organization_memberships.user_id = users.id").
		Where("organization_memberships.organization_id = ? AND organization_memberships.status = ?", organizationID, organization.StatusMember).
		Order("organization_memberships.accepted_at ASC").
		Order("organization_memberships.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]*user.User, 0, len(rows))
	for _, row := range rows {
		members = append(members, user.FromDataModel(row))
	}
	return members, nil
}

// MembershipStatus returns "" when the pair has no row.
func (r *OrganizationRepository) MembershipStatus(ctx context.Context, organizationID, userID string) (string, error) {
	var row orgDatamodel.Membership
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.Status, nil
}

func (r *OrganizationRepository) InsertPendingRequest(ctx context.Context, organizationID, userID string) (bool, error) {
	row := &orgDatamodel.Membership{
		OrganizationID: organizationID,
		UserID:         userID,
		Status:         organization.StatusPending,
		RequestedAt:    time.Now(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		// organization existence is checked by the caller, so a dangling
		// reference here is the user
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return false, internal.ErrUserNotFound
		}
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *OrganizationRepository) PromotePending(ctx context.Context, organizationID, userID, actorID string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&orgDatamodel.Membership{}).
		Where("organization_id = ? AND user_id = ? AND status = ?", organizationID, userID, organization.StatusPending).
		Updates(map[string]interface{}{
			"status":      organization.StatusMember,
			"accepted_at": now,
			"accepted_by": actorID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
