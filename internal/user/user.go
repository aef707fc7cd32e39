package user

import (
	"strings"
	"time"

	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicView is the only shape of a user that leaves the service.
type PublicView struct {
	ID        string   `json:"_id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstname"`
	LastName  string   `json:"lastname"`
	Roles     []string `json:"roles"`
	IsAdmin   bool     `json:"isAdmin"`
}

// Profile is the minimal self view returned by GET /profile.
type Profile struct {
	Email string `json:"email"`
	ID    string `json:"_id"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u *User) Public() PublicView {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return PublicView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     roles,
		IsAdmin:   u.IsAdmin(),
	}
}

func (u *User) Profile() Profile {
	return Profile{Email: u.Email, ID: u.ID}
}

// Validate checks the stored shape of a user record.
func (u *User) Validate() error {
	v := validation.NewValidator()
	v.Field("email", u.Email).Required().Email().MaxLength(254)
	v.Field("firstname", u.FirstName).Required().MaxLength(100)
	v.Field("lastname", u.LastName).Required().MaxLength(100)
	v.Field("roles", u.Roles).Required().OneOf(RoleAdmin, RoleUser)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RolesFor applies the bootstrap rule: only the configured address is Admin.
func RolesFor(email, bootstrapAdminEmail string) []string {
	if bootstrapAdminEmail != "" && email == bootstrapAdminEmail {
		return []string{RoleAdmin}
	}
	return []string{RoleUser}
}

func ParseRoles(raw string) []string {
	if raw == "" {
		return nil
	}
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        JoinRoles(u.Roles),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        ParseRoles(u.Roles),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
