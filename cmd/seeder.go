package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	authPostgres "github.com/frahmantamala/shiftboard/internal/auth/postgres"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/organization"
	orgPostgres "github.com/frahmantamala/shiftboard/internal/organization/postgres"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedEmail     string
	seedPassword  string
	seedFirstName string
	seedLastName  string
	seedOrg       string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the bootstrap admin",
	Long:  `Create the bootstrap admin account and, optionally, an organization it owns.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if seedPassword == "" {
			log.Fatal("--password is required")
		}
		if seedEmail == "" {
			seedEmail = cfg.Security.BootstrapAdminEmail
		}

		lg := logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		tokens, err := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
		if err != nil {
			log.Fatalf("failed to init token issuer: %v", err)
		}

		bus := events.NewEventBus(lg)
		events.RegisterAuditLog(bus, lg)
		defer bus.Wait()

		ctx := context.Background()
		credentials := authPostgres.NewCredentialRepository(gormDB)
		authService := auth.NewService(credentials, tokens, bus, auth.Options{
			BCryptCost:          cfg.Security.BCryptCost,
			BootstrapAdminEmail: cfg.Security.BootstrapAdminEmail,
		}, lg)

		_, err = authService.Register(ctx, auth.RegisterDTO{
			Email:     seedEmail,
			Password:  seedPassword,
			FirstName: seedFirstName,
			LastName:  seedLastName,
		})
		switch {
		case errors.Is(err, internal.ErrDuplicateUser):
			fmt.Println("user already exists:", seedEmail)
		case err != nil:
			log.Fatalf("failed to seed user %s: %v", seedEmail, err)
		default:
			fmt.Println("Seeded user:", seedEmail)
		}

		if seedOrg == "" {
			return
		}

		owner, err := credentials.FindByEmail(ctx, seedEmail)
		if err != nil {
			log.Fatalf("failed to look up seeded user: %v", err)
		}

		orgService := organization.NewService(
			orgPostgres.NewOrganizationRepository(gormDB),
			orgPostgres.NewCapabilityChecker(db),
			bus,
			lg,
		)
		org, err := orgService.CreateOrganization(ctx, owner.ID, organization.CreateOrganizationDTO{Name: seedOrg})
		if err != nil {
			log.Fatalf("failed to seed organization %s: %v", seedOrg, err)
		}
		fmt.Printf("Seeded organization %s (%s) owned by %s\n", org.Name, org.ID, seedEmail)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "account email, defaults to security.bootstrap_admin_email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "account password")
	seedCmd.Flags().StringVar(&seedFirstName, "firstname", "Admin", "account first name")
	seedCmd.Flags().StringVar(&seedLastName, "lastname", "User", "account last name")
	seedCmd.Flags().StringVar(&seedOrg, "org", "", "name of an organization to create for the account")
}
