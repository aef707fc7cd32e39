package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/dbtest"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/internal/user"
	userPostgres "github.com/frahmantamala/shiftboard/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Handler Integration", func() {
	var router chi.Router

	// asUser stands in for the session middleware.
	asUser := func(userID string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userID != "" {
					r = r.WithContext(internal.ContextWithUserID(r.Context(), userID))
				}
				next.ServeHTTP(w, r)
			})
		}
	}

	BeforeEach(func() {
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		for _, u := range []*user.User{
			{ID: "alice", Email: "alice@example.com", PasswordHash: "h", Roles: []string{user.RoleUser}, FirstName: "Alice", LastName: "Liddell"},
			{ID: "bob", Email: "bob@example.com", PasswordHash: "h", Roles: []string{user.RoleUser}, FirstName: "Bob", LastName: "Builder"},
		} {
			Expect(db.WithContext(context.Background()).Create(user.ToDataModel(u)).Error).To(Succeed())
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := user.NewService(userPostgres.NewUserRepository(db), logger)
		handler := user.NewHandler(transport.NewBaseHandler(logger), service)

		router = chi.NewRouter()
		router.With(asUser("alice")).Get("/users/profile", handler.GetProfile)
		router.With(asUser("")).Get("/anonymous/profile", handler.GetProfile)
		router.With(asUser("alice")).Put("/users/profile/{uid}", handler.UpdateProfile)
		router.With(asUser("alice")).Get("/users/{uid}", handler.GetUser)
	})

	serve := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var payload []byte
		if body != nil {
			payload, _ = json.Marshal(body)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(payload))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should return the caller's profile", func() {
		w := serve(http.MethodGet, "/users/profile", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var profile user.Profile
		Expect(json.Unmarshal(w.Body.Bytes(), &profile)).To(Succeed())
		Expect(profile).To(Equal(user.Profile{Email: "alice@example.com", ID: "alice"}))
	})

	It("should answer 401 without an authenticated user", func() {
		w := serve(http.MethodGet, "/anonymous/profile", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should fetch another user's public view", func() {
		w := serve(http.MethodGet, "/users/bob", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"firstname":"Bob"`))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("should answer 404 for an unknown user", func() {
		w := serve(http.MethodGet, "/users/ghost", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should update the caller's own profile", func() {
		w := serve(http.MethodPut, "/users/profile/alice", map[string]string{"lastname": "Pleasance"})
		Expect(w.Code).To(Equal(http.StatusOK))

		var view user.PublicView
		Expect(json.Unmarshal(w.Body.Bytes(), &view)).To(Succeed())
		Expect(view.LastName).To(Equal("Pleasance"))
	})

	It("should answer 403 when editing someone else", func() {
		w := serve(http.MethodPut, "/users/profile/bob", map[string]string{"lastname": "Hacked"})
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 409 when taking another user's email", func() {
		w := serve(http.MethodPut, "/users/profile/alice", map[string]string{"email": "bob@example.com"})
		Expect(w.Code).To(Equal(http.StatusConflict))
	})
})
