package organization

import "time"

type Organization struct {
	ID          string    `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	OwnerID     string    `gorm:"column:owner_id;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}

// Membership is the single row tracking one user's standing in one
// organization; the unique pair keeps pending and member disjoint.
type Membership struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	OrganizationID string     `gorm:"column:organization_id;not null;uniqueIndex:idx_memberships_org_user"`
	UserID         string     `gorm:"column:user_id;not null;uniqueIndex:idx_memberships_org_user;index"`
	Status         string     `gorm:"column:status;not null"`
	RequestedAt    time.Time  `gorm:"column:requested_at;not null"`
	AcceptedAt     *time.Time `gorm:"column:accepted_at"`
	AcceptedBy     *string    `gorm:"column:accepted_by"`
}

func (Membership) TableName() string {
	return "organization_memberships"
}
