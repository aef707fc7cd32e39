package auth

import (
	"net/http"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/pkg/logger"
)

const SessionCookieName = "token"

// CookieConfig describes the HTTP-only cookie carrying the session token.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return SessionCookieName
	}
	return c.Name
}

// Set writes the session cookie, expiring together with the token.
func (c CookieConfig) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// SessionMiddleware authenticates requests from the session cookie, falling
// back to a bearer token, and stores the user id in the request context.
type SessionMiddleware struct {
	*transport.BaseHandler
	verifier TokenVerifier
	cookie   CookieConfig
}

func NewSessionMiddleware(base *transport.BaseHandler, verifier TokenVerifier, cookie CookieConfig) *SessionMiddleware {
	if base == nil {
		base = transport.NewBaseHandler(nil)
	}
	return &SessionMiddleware{
		BaseHandler: base,
		verifier:    verifier,
		cookie:      cookie,
	}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromCookie(r, m.cookie.name())
		if token == "" {
			token = m.ExtractTokenFromHeader(r)
		}
		if token == "" {
			m.HandleServiceError(w, r, internal.ErrMissingToken)
			return
		}

		userID, err := m.verifier.Verify(token)
		if err != nil {
			m.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), userID)
		ctx = logger.With(ctx, "user_id", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
