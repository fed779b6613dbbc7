// Package auth resolves the calling account and holds the access rules
// every service operation applies before it reads or writes tenant data.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

// Identity is the verified assertion from the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Caller is the resolved account behind a request. It is passed
// explicitly to every helper that makes an access decision.
type Caller struct {
	Account model.Account
}

func (c Caller) ID() string       { return c.Account.ID }
func (c Caller) TenantID() string { return c.Account.TenantID }
func (c Caller) Role() model.Role { return c.Account.Role }

// Role sets used across services.
var (
	StaffRoles = []model.Role{model.RoleOrgAdmin, model.RoleManager, model.RolePlatformAdmin}
	AdminRoles = []model.Role{model.RoleOrgAdmin, model.RolePlatformAdmin}
)

// ResolveCaller maps an identity to its account.
func ResolveCaller(ctx context.Context, tx repository.Tx, id *Identity) (Caller, error) {
	if id == nil || strings.TrimSpace(id.Subject) == "" {
		return Caller{}, apperr.ErrUnauthenticated
	}
	acc, err := repository.Accounts(tx).Find(ctx, repository.ByExternalID, id.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return Caller{}, apperr.ErrAccountNotFound
	}
	if err != nil {
		return Caller{}, fmt.Errorf("resolve caller: %w", err)
	}
	return Caller{Account: acc}, nil
}

// RequireRole fails with Forbidden unless role is one of allowed.
func RequireRole(role model.Role, allowed ...model.Role) error {
	if HasRole(role, allowed...) {
		return nil
	}
	return apperr.ErrForbidden
}

// HasRole reports whether role is one of allowed.
func HasRole(role model.Role, allowed ...model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// RequireSameTenant fails when the caller has no tenant or belongs to a
// different one than the resource. Role plays no part.
func RequireSameTenant(resourceTenantID, callerTenantID string) error {
	if callerTenantID == "" || resourceTenantID != callerTenantID {
		return apperr.ErrCrossTenant
	}
	return nil
}

// RequireSelfOrRole allows the owner of a record unconditionally and
// anyone else only from the resource's tenant with one of allowed.
func RequireSelfOrRole(c Caller, ownerID, resourceTenantID string, allowed ...model.Role) error {
	if ownerID != "" && c.ID() == ownerID {
		return nil
	}
	if err := RequireSameTenant(resourceTenantID, c.TenantID()); err != nil {
		return err
	}
	return RequireRole(c.Role(), allowed...)
}

// RequireStaff is RequireSameTenant followed by a StaffRoles check.
func RequireStaff(c Caller, resourceTenantID string) error {
	if err := RequireSameTenant(resourceTenantID, c.TenantID()); err != nil {
		return err
	}
	return RequireRole(c.Role(), StaffRoles...)
}
