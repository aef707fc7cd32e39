package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/jmoiron/sqlx"
)

const capabilityQueryTimeout = 3 * time.Second

// CapabilityChecker grants admin rights over an organization to its owner and
// to holders of the global Admin role.
type CapabilityChecker struct {
	db *sqlx.DB
}

func NewCapabilityChecker(db *sqlx.DB) *CapabilityChecker {
	return &CapabilityChecker{db: db}
}

func (c *CapabilityChecker) CanManage(ctx context.Context, organizationID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	ctx, cancel := internal.WithTimeout(ctx, capabilityQueryTimeout)
	defer cancel()

	var owner bool
	ownerQuery := c.db.Rebind(`SELECT EXISTS(SELECT 1 FROM organizations WHERE id = ? AND owner_id = ?)`)
	if err := c.db.GetContext(ctx, &owner, ownerQuery, organizationID, userID); err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}

	var roles string
	rolesQuery := c.db.Rebind(`SELECT roles FROM users WHERE id = ?`)
	if err := c.db.GetContext(ctx, &roles, rolesQuery, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	for _, role := range user.ParseRoles(roles) {
		if role == user.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}
