package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SessionMiddleware", func() {
	var (
		issuer  *auth.TokenIssuer
		handler http.Handler
		seen    string
	)

	BeforeEach(func() {
		var err error
		issuer, err = auth.NewTokenIssuer(testSecret, time.Hour)
		Expect(err).NotTo(HaveOccurred())

		seen = ""
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = internal.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})
		mw := auth.NewSessionMiddleware(transport.NewBaseHandler(newTestLogger()), issuer, auth.CookieConfig{})
		handler = mw.Handler(next)
	})

	errorCode := func(w *httptest.ResponseRecorder) string {
		var body map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return body["code"].(string)
	}

	It("should accept the session cookie", func() {
		token, _, err := issuer.Issue("user-1")
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(seen).To(Equal("user-1"))
	})

	It("should fall back to a bearer token", func() {
		token, _, err := issuer.Issue("user-2")
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(seen).To(Equal("user-2"))
	})

	It("should answer 401 without a token", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeMissingToken)))
		Expect(seen).To(BeEmpty())
	})

	It("should answer 401 for a tampered token", func() {
		token, _, err := issuer.Issue("user-1")
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token + "x"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeInvalidToken)))
	})

	It("should answer 401 for an expired token", func() {
		past := issuer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
		token, _, err := past.Issue("user-1")
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeTokenExpired)))
	})
})
