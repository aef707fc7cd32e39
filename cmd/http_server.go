package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	authPostgres "github.com/frahmantamala/shiftboard/internal/auth/postgres"
	"github.com/frahmantamala/shiftboard/internal/auth/social"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/organization"
	orgPostgres "github.com/frahmantamala/shiftboard/internal/organization/postgres"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/internal/transport/middleware"
	"github.com/frahmantamala/shiftboard/internal/transport/rest"
	"github.com/frahmantamala/shiftboard/internal/transport/swagger"
	"github.com/frahmantamala/shiftboard/internal/user"
	userPostgres "github.com/frahmantamala/shiftboard/internal/user/postgres"
	"github.com/frahmantamala/shiftboard/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Bus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	base := transport.NewBaseHandler(lg)
	cookie := auth.CookieConfig{Name: auth.SessionCookieName, Secure: cfg.Security.CookieSecure}

	authService := auth.NewService(
		authPostgres.NewCredentialRepository(gormDB),
		tokens,
		bus,
		auth.Options{
			BCryptCost:          cfg.Security.BCryptCost,
			BootstrapAdminEmail: cfg.Security.BootstrapAdminEmail,
		},
		lg.With("service", "auth"),
	)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), lg.With("service", "user"))
	orgService := organization.NewService(
		orgPostgres.NewOrganizationRepository(gormDB),
		orgPostgres.NewCapabilityChecker(db),
		bus,
		lg.With("service", "organization"),
	)

	var providers []*social.Provider
	if cfg.OAuth.Google.Enabled() {
		providers = append(providers, social.NewGoogleProvider(cfg.OAuth.Google))
	}
	if cfg.OAuth.Facebook.Enabled() {
		providers = append(providers, social.NewFacebookProvider(cfg.OAuth.Facebook))
	}

	routes := rest.Routes{
		Health:         rest.NewHealthHandler(db),
		Auth:           auth.NewHandler(base, authService, cookie),
		Session:        auth.NewSessionMiddleware(base, tokens, cookie),
		Social:         social.NewHandler(base, authService, cookie, providers...),
		User:           user.NewHandler(base, userService),
		Organization:   organization.NewHandler(base, orgService),
		AuthLimiter:    middleware.NewRateLimiter(cfg.Server.AuthRateLimitPerMinute),
		AllowedOrigins: cfg.Server.Origins(),
		Logger:         lg,
	}

	if cfg.Server.OpenAPIPath != "" {
		doc, err := swagger.LoadSpec(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			lg.Warn("openapi spec unavailable, swagger ui disabled", "error", err)
		} else if routes.OpenAPISpec, err = swagger.SpecHandler(doc); err != nil {
			lg.Warn("openapi spec could not be encoded", "error", err)
		}
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, routes)

	return &Dependencies{
		Config: cfg,
		Logger: lg,
		DB:     db,
		Gorm:   gormDB,
		Bus:    bus,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see one set of connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
