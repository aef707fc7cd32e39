package user

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;column:id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null;default:''"`
	Roles        string    `gorm:"column:roles;not null"`
	FirstName    string    `gorm:"column:firstname;not null"`
	LastName     string    `gorm:"column:lastname;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Identity links an external provider subject to a local user.
type Identity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Provider  string    `gorm:"column:provider;not null;uniqueIndex:idx_user_identities_provider_subject"`
	Subject   string    `gorm:"column:subject;not null;uniqueIndex:idx_user_identities_provider_subject"`
	UserID    string    `gorm:"column:user_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Identity) TableName() string {
	return "user_identities"
}
