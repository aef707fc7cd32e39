package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// CredentialStore persists users and their external identities.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByIdentity(ctx context.Context, provider, subject string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	CreateWithIdentity(ctx context.Context, u *user.User, identity *userDatamodel.Identity) error
	LinkIdentity(ctx context.Context, identity *userDatamodel.Identity) error
}

// TokenIssuerAPI signs and verifies session tokens.
type TokenIssuerAPI interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
	Verify(token string) (userID string, err error)
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      user.PublicView
}

// VerifiedIdentity is the provider-asserted identity produced by a completed
// OAuth code exchange.
type VerifiedIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	DisplayName   string
}

// Claims carries only registered claims; the subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

var (
	ErrMissingSigningKey = errors.New("jwt signing secret is not configured")
	ErrUserNotFound      = errors.New("user not found")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
