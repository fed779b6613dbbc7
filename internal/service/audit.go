package service

import (
	"context"

	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

type AuditService struct{ *core }

// List returns a tenant's audit trail, newest first, optionally for one
// action. Admins of the tenant only.
func (s *AuditService) List(ctx context.Context, id *auth.Identity, tenantID, action string, limit int) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireSameTenant(tenantID, c.TenantID()); err != nil {
			return err
		}
		if err := auth.RequireRole(c.Role(), auth.AdminRoles...); err != nil {
			return err
		}
		all, err := repository.AuditEntries(tx).List(ctx, repository.ByTenant, tenantID)
		if err != nil {
			return storeErr(err, "audit entry")
		}
		var keep func(model.AuditEntry) bool
		if action != "" {
			keep = func(e model.AuditEntry) bool { return e.Action == action }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}
