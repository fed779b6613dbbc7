package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

type AccountService struct{ *core }

// ProfileSync is the profile data the identity provider reports.
type ProfileSync struct {
	Email  string
	Name   string
	Phone  string
	Avatar string
}

// SyncIdentity creates or refreshes the account for the authenticated
// subject. New accounts start as customers without a tenant.
func (s *AccountService) SyncIdentity(ctx context.Context, id *auth.Identity, p ProfileSync) (model.Account, error) {
	if id == nil || strings.TrimSpace(id.Subject) == "" {
		return model.Account{}, apperr.ErrUnauthenticated
	}
	if p.Email == "" {
		p.Email = id.Email
	}
	if p.Name == "" {
		p.Name = id.Name
	}
	var out model.Account
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		accounts := repository.Accounts(tx)
		now := s.nowMs()
		acc, err := accounts.Find(ctx, repository.ByExternalID, id.Subject)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			acc = model.Account{
				ID:          ids.New(),
				ExternalID:  id.Subject,
				Role:        model.RoleCustomer,
				Preferences: model.DefaultPreferences(),
				IsActive:    true,
				CreatedAt:   now,
			}
		case err != nil:
			return storeErr(err, "account")
		}
		acc.Email = p.Email
		acc.Name = p.Name
		if p.Phone != "" {
			acc.Phone = p.Phone
		}
		if p.Avatar != "" {
			acc.Avatar = p.Avatar
		}
		acc.LastActiveAt = now
		acc.UpdatedAt = now
		if err := accounts.Upsert(ctx, acc); err != nil {
			return storeErr(err, "account")
		}
		out = acc
		return nil
	})
	return out, err
}

// Me returns the caller's own account.
func (s *AccountService) Me(ctx context.Context, id *auth.Identity) (model.Account, error) {
	var out model.Account
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		out = c.Account
		return nil
	})
	return out, err
}

// Get returns an account visible to the caller: their own, or one in the
// caller's tenant.
func (s *AccountService) Get(ctx context.Context, id *auth.Identity, accountID string) (model.Account, error) {
	var out model.Account
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		acc, err := load(ctx, repository.Accounts(tx), accountID, "account")
		if err != nil {
			return err
		}
		if acc.ID != c.ID() {
			if err := auth.RequireSameTenant(acc.TenantID, c.TenantID()); err != nil {
				return err
			}
		}
		out = acc
		return nil
	})
	return out, err
}

// ListByTenant lists the tenant's members, optionally only one role.
func (s *AccountService) ListByTenant(ctx context.Context, id *auth.Identity, tenantID string, role *model.Role, limit int) ([]model.Account, error) {
	var out []model.Account
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireSameTenant(tenantID, c.TenantID()); err != nil {
			return err
		}
		all, err := repository.Accounts(tx).List(ctx, repository.ByTenant, tenantID)
		if err != nil {
			return storeErr(err, "account")
		}
		var keep func(model.Account) bool
		if role != nil {
			keep = func(a model.Account) bool { return a.Role == *role }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	Name   *string
	Phone  *string
	Avatar *string
}

func (s *AccountService) UpdateProfile(ctx context.Context, id *auth.Identity, u ProfileUpdate) (model.Account, error) {
	return s.updateSelf(ctx, id, func(a *model.Account) error {
		if u.Name != nil {
			if strings.TrimSpace(*u.Name) == "" {
				return apperr.Invalid("name must not be empty")
			}
			a.Name = *u.Name
		}
		if u.Phone != nil {
			a.Phone = *u.Phone
		}
		if u.Avatar != nil {
			a.Avatar = *u.Avatar
		}
		return nil
	})
}

func (s *AccountService) UpdatePreferences(ctx context.Context, id *auth.Identity, p model.Preferences) (model.Account, error) {
	return s.updateSelf(ctx, id, func(a *model.Account) error {
		if p.MeasurementUnit != "cm" && p.MeasurementUnit != "inches" {
			return apperr.Invalid("measurement unit must be cm or inches")
		}
		if p.Currency == "" || p.Language == "" {
			return apperr.Invalid("currency and language are required")
		}
		a.Preferences = p
		return nil
	})
}

func (s *AccountService) SaveMeasurements(ctx context.Context, id *auth.Identity, m map[string]float64) (model.Account, error) {
	return s.updateSelf(ctx, id, func(a *model.Account) error {
		for k, v := range m {
			if v < 0 {
				return apperr.Invalid("measurement %s must not be negative", k)
			}
		}
		a.SavedMeasurements = m
		return nil
	})
}

func (s *AccountService) updateSelf(ctx context.Context, id *auth.Identity, apply func(*model.Account) error) (model.Account, error) {
	var out model.Account
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		acc := c.Account
		if err := apply(&acc); err != nil {
			return err
		}
		acc.UpdatedAt = s.nowMs()
		if err := repository.Accounts(tx).Update(ctx, acc); err != nil {
			return storeErr(err, "account")
		}
		out = acc
		return nil
	})
	return out, err
}

// BindMembership attaches the account with externalID to tenantID with
// role, as reported by an organization membership event. Only admins of
// that tenant may bind, and only accounts without a tenant or already in
// it. Only a platform admin may grant or change platform_admin.
func (s *AccountService) BindMembership(ctx context.Context, id *auth.Identity, externalID, tenantID string, role model.Role) (model.Account, error) {
	var out model.Account
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if !role.Valid() {
			return apperr.Invalid("unknown role %q", role)
		}
		if err := auth.RequireSameTenant(tenantID, c.TenantID()); err != nil {
			return err
		}
		if err := auth.RequireRole(c.Role(), auth.AdminRoles...); err != nil {
			return err
		}
		if role == model.RolePlatformAdmin && c.Role() != model.RolePlatformAdmin {
			return apperr.Forbidden("only a platform admin can grant platform_admin")
		}
		accounts := repository.Accounts(tx)
		acc, err := accounts.Find(ctx, repository.ByExternalID, externalID)
		if err != nil {
			return storeErr(err, "account")
		}
		if acc.TenantID != "" && c.Role() != model.RolePlatformAdmin {
			if err := auth.RequireSameTenant(acc.TenantID, tenantID); err != nil {
				return err
			}
		}
		if acc.Role == model.RolePlatformAdmin && c.Role() != model.RolePlatformAdmin {
			return apperr.Forbidden("only a platform admin can change a platform admin")
		}
		acc.TenantID = tenantID
		acc.Role = role
		acc.UpdatedAt = s.nowMs()
		if err := accounts.Update(ctx, acc); err != nil {
			return storeErr(err, "account")
		}
		out = acc
		return nil
	})
	return out, err
}
