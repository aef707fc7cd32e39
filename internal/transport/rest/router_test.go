package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	authPostgres "github.com/frahmantamala/shiftboard/internal/auth/postgres"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/dbtest"
	"github.com/frahmantamala/shiftboard/internal/organization"
	orgPostgres "github.com/frahmantamala/shiftboard/internal/organization/postgres"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/internal/transport/middleware"
	"github.com/frahmantamala/shiftboard/internal/transport/rest"
	"github.com/frahmantamala/shiftboard/internal/user"
	userPostgres "github.com/frahmantamala/shiftboard/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestRouter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

// client keeps the session cookie between requests the way a browser would.
type client struct {
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newClient(router http.Handler) *client {
	return &client{router: router, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func decode(w *httptest.ResponseRecorder, into interface{}) {
	ExpectWithOffset(1, json.Unmarshal(w.Body.Bytes(), into)).To(Succeed())
}

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		bus    *events.EventBus
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		tokens, err := auth.NewTokenIssuer("router-test-secret-0123456789abcdef", internal.DefaultTokenTTL)
		Expect(err).NotTo(HaveOccurred())

		bus = events.NewEventBus(logger)
		events.RegisterAuditLog(bus, logger)
		DeferCleanup(bus.Wait)

		base := transport.NewBaseHandler(logger)
		cookie := auth.CookieConfig{Name: auth.SessionCookieName}
		authService := auth.NewService(authPostgres.NewCredentialRepository(db), tokens, bus, auth.Options{
			BCryptCost:          bcrypt.MinCost,
			BootstrapAdminEmail: "admin@example.com",
		}, logger)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Routes{
			Health:  rest.NewHealthHandler(sqlDB),
			Auth:    auth.NewHandler(base, authService, cookie),
			Session: auth.NewSessionMiddleware(base, tokens, cookie),
			User:    user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(db), logger)),
			Organization: organization.NewHandler(base, organization.NewService(
				orgPostgres.NewOrganizationRepository(db),
				orgPostgres.NewCapabilityChecker(sqlx.NewDb(sqlDB, "sqlite3")),
				bus,
				logger,
			)),
			AuthLimiter:    middleware.NewRateLimiter(600),
			AllowedOrigins: (&internal.ServerConfig{AllowedOrigins: "http://app.example.com"}).Origins(),
			Logger:         logger,
		})
	})

	registerAndLogin := func(c *client, email, first string) user.PublicView {
		w := c.do(http.MethodPost, "/api/users/register", map[string]string{
			"email": email, "password": "secret-" + first, "firstname": first, "lastname": "Tester",
		})
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		w = c.do(http.MethodPost, "/api/users/login", map[string]string{"email": email, "password": "secret-" + first})
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		var resp auth.LoginResponse
		decode(w, &resp)
		return resp.User
	}

	It("should run the membership workflow end to end", func() {
		alice := newClient(router)
		bob := newClient(router)
		carol := newClient(router)

		aliceView := registerAndLogin(alice, "alice@example.com", "Alice")
		bobView := registerAndLogin(bob, "bob@example.com", "Bob")
		registerAndLogin(carol, "carol@example.com", "Carol")

		w := alice.do(http.MethodPost, "/api/organization", map[string]string{"name": "Night Shift"})
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var org organization.View
		decode(w, &org)
		Expect(org.OwnerID).To(Equal(aliceView.ID))

		w = bob.do(http.MethodPost, "/api/organization/"+org.ID+"/bePart", nil)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		Expect(w.Body.String()).To(ContainSubstring("Request sent"))

		w = carol.do(http.MethodPut, "/api/organization/"+org.ID+"/"+bobView.ID, nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))

		w = alice.do(http.MethodPut, "/api/organization/"+org.ID+"/"+bobView.ID, nil)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		decode(w, &org)
		Expect(org.Members).To(Equal([]string{bobView.ID}))
		Expect(org.PendingRequests).To(BeEmpty())

		w = alice.do(http.MethodPut, "/api/organization/"+org.ID+"/"+bobView.ID, nil)
		Expect(w.Code).To(Equal(http.StatusConflict))

		w = carol.do(http.MethodGet, "/api/organization/"+org.ID+"/employees", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var employees []user.PublicView
		decode(w, &employees)
		Expect(employees).To(HaveLen(1))
		Expect(employees[0].Email).To(Equal("bob@example.com"))

		w = bob.do(http.MethodDelete, "/api/organization/"+org.ID, nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))

		w = alice.do(http.MethodDelete, "/api/organization/"+org.ID, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Organization deleted"))

		w = alice.do(http.MethodGet, "/api/organization/"+org.ID, nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should let the bootstrap admin manage any organization", func() {
		owner := newClient(router)
		admin := newClient(router)
		member := newClient(router)

		registerAndLogin(owner, "owner@example.com", "Owner")
		adminView := registerAndLogin(admin, "admin@example.com", "Admin")
		memberView := registerAndLogin(member, "member@example.com", "Member")
		Expect(adminView.IsAdmin).To(BeTrue())

		w := owner.do(http.MethodPost, "/api/organization", map[string]string{"name": "Day Shift"})
		var org organization.View
		decode(w, &org)

		Expect(member.do(http.MethodPost, "/api/organization/"+org.ID+"/bePart", nil).Code).To(Equal(http.StatusOK))
		w = admin.do(http.MethodPut, "/api/organization/"+org.ID+"/"+memberView.ID, nil)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
	})

	It("should reject protected routes without a session", func() {
		anonymous := newClient(router)

		for _, path := range []string{"/api/users/profile", "/api/organization", "/api/organization/x/employees"} {
			w := anonymous.do(http.MethodGet, path, nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized), path)
			Expect(w.Body.String()).To(ContainSubstring("Not authorized, no token"))
		}
	})

	It("should clear the session cookie from the client on logout", func() {
		alice := newClient(router)
		registerAndLogin(alice, "alice@example.com", "Alice")

		Expect(alice.do(http.MethodGet, "/api/users/profile", nil).Code).To(Equal(http.StatusOK))
		Expect(alice.do(http.MethodPost, "/api/users/logout", nil).Code).To(Equal(http.StatusOK))
		Expect(alice.do(http.MethodGet, "/api/users/profile", nil).Code).To(Equal(http.StatusUnauthorized))
	})

	It("should return the profile of the logged in user", func() {
		alice := newClient(router)
		view := registerAndLogin(alice, "alice@example.com", "Alice")

		w := alice.do(http.MethodGet, "/api/users/profile", nil)
		var profile user.Profile
		decode(w, &profile)
		Expect(profile).To(Equal(user.Profile{Email: "alice@example.com", ID: view.ID}))
	})

	DescribeTable("should answer CORS preflights for allowed origins",
		func(origin string) {
			req := httptest.NewRequest(http.MethodOptions, "/api/users/login", nil)
			req.Header.Set("Origin", origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal(origin))
			Expect(w.Header().Get("Access-Control-Allow-Credentials")).To(Equal("true"))
		},
		Entry("configured origin", "http://app.example.com"),
		Entry("local web client", internal.DevClientOrigin),
	)

	It("should report health", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp rest.HealthResponse
		decode(w, &resp)
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("database"))
	})

	It("should report an unreachable database as unhealthy", func() {
		w := httptest.NewRecorder()
		rest.NewHealthHandler(failingPinger{}).Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
