package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/auth/social"
	"github.com/frahmantamala/shiftboard/internal/organization"
	"github.com/frahmantamala/shiftboard/internal/transport/middleware"
	"github.com/frahmantamala/shiftboard/internal/transport/swagger"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Routes bundles everything RegisterAllRoutes mounts. Nil handlers are skipped.
type Routes struct {
	Health         *HealthHandler
	Auth           *auth.Handler
	Session        *auth.SessionMiddleware
	Social         *social.Handler
	User           *user.Handler
	Organization   *organization.Handler
	AuthLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	OpenAPISpec    http.Handler
	Logger         *slog.Logger
}

func RegisterAllRoutes(router chi.Router, routes Routes) {
	logger := routes.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(routes.AllowedOrigins))

	if routes.OpenAPISpec != nil {
		router.Method(http.MethodGet, swagger.SpecRoute, routes.OpenAPISpec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		if routes.Health != nil {
			r.Get("/health", routes.Health.Health)
			r.Get("/ping", routes.Health.Ping)
		}

		r.Route("/users", func(ur chi.Router) {
			if routes.Auth != nil {
				ur.Group(func(lr chi.Router) {
					lr.Use(routes.AuthLimiter.Handler)
					lr.Post("/register", routes.Auth.Register)
					lr.Post("/login", routes.Auth.Login)
				})
				ur.Post("/logout", routes.Auth.Logout)
			}

			if routes.Social != nil {
				ur.Get("/auth/{provider}", routes.Social.Start)
				ur.Get("/auth/{provider}/callback", routes.Social.Callback)
			}

			if routes.Session != nil && routes.User != nil {
				ur.Group(func(pr chi.Router) {
					pr.Use(routes.Session.Handler)
					pr.Get("/profile", routes.User.GetProfile)
					pr.Put("/profile/{uid}", routes.User.UpdateProfile)
					pr.Get("/{uid}", routes.User.GetUser)
				})
			}
		})

		if routes.Session != nil && routes.Organization != nil {
			r.Route("/organization", func(or chi.Router) {
				or.Use(routes.Session.Handler)
				or.Post("/", routes.Organization.CreateOrganization)
				or.Get("/", routes.Organization.ListOrganizations)
				or.Get("/{oid}", routes.Organization.GetOrganization)
				or.Delete("/{oid}", routes.Organization.DeleteOrganization)
				or.Get("/{oid}/employees", routes.Organization.GetEmployees)
				or.Post("/{oid}/bePart", routes.Organization.RequestToJoin)
				or.Put("/{oid}/{uid}", routes.Organization.AcceptEmployee)
			})
		}
	})
}
