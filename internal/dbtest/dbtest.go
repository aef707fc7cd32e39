// Package dbtest opens an in-memory SQLite database carrying the same schema
// the goose migrations create, for repository and workflow specs.
package dbtest

import (
	"fmt"

	orgDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh database. The pool is pinned to one connection so every
// goroutine sees the same in-memory database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&userDatamodel.User{},
		&userDatamodel.Identity{},
		&orgDatamodel.Organization{},
		&orgDatamodel.Membership{},
	); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

// EnforceMembershipReferences rebuilds organization_memberships with the
// foreign keys the migrations declare and turns on SQLite enforcement.
func EnforceMembershipReferences(db *gorm.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`DROP TABLE organization_memberships`,
		`CREATE TABLE organization_memberships (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			organization_id TEXT NOT NULL REFERENCES organizations (id) ON DELETE CASCADE,
			user_id         TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			status          TEXT NOT NULL,
			requested_at    DATETIME NOT NULL,
			accepted_at     DATETIME,
			accepted_by     TEXT REFERENCES users (id) ON DELETE SET NULL
		)`,
		`CREATE UNIQUE INDEX idx_memberships_org_user ON organization_memberships (organization_id, user_id)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("enforce membership references: %w", err)
		}
	}
	return nil
}
