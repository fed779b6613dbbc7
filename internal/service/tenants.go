package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

type TenantService struct{ *core }

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type TenantInput struct {
	Name          string
	Slug          string
	ExternalOrgID string
	Description   string
	Tagline       string
	Logo          string
	Address       model.Address
	Phone         string
	Email         string
}

// Create registers a tenant. A caller without a tenant becomes its
// org_admin; platform admins may create tenants for others.
func (s *TenantService) Create(ctx context.Context, id *auth.Identity, in TenantInput) (model.Tenant, error) {
	var out model.Tenant
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		slug := strings.ToLower(strings.TrimSpace(in.Slug))
		if strings.TrimSpace(in.Name) == "" || !slugPattern.MatchString(slug) {
			return apperr.Invalid("name and a lowercase slug are required")
		}
		if c.TenantID() != "" && c.Role() != model.RolePlatformAdmin {
			return apperr.Conflict("account already belongs to a tenant")
		}
		now := s.nowMs()
		t := model.Tenant{
			ID:            ids.New(),
			Name:          in.Name,
			Slug:          slug,
			ExternalOrgID: in.ExternalOrgID,
			Description:   in.Description,
			Tagline:       in.Tagline,
			Logo:          in.Logo,
			Address:       in.Address,
			Phone:         in.Phone,
			Email:         in.Email,
			Settings:      model.DefaultTenantSettings(),
			Badges:        []string{},
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repository.Tenants(tx).Insert(ctx, t); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("slug %q is taken", slug)
			}
			return storeErr(err, "tenant")
		}
		if c.TenantID() == "" {
			acc := c.Account
			acc.TenantID = t.ID
			acc.Role = model.RoleOrgAdmin
			acc.UpdatedAt = now
			if err := repository.Accounts(tx).Update(ctx, acc); err != nil {
				return storeErr(err, "account")
			}
		}
		out = t
		return nil
	})
	return out, err
}

func (s *TenantService) Get(ctx context.Context, id *auth.Identity, tenantID string) (model.Tenant, error) {
	var out model.Tenant
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		t, err := load(ctx, repository.Tenants(tx), tenantID, "tenant")
		out = t
		return err
	})
	return out, err
}

// GetBySlug resolves a tenant's public page. It needs no identity.
func (s *TenantService) GetBySlug(ctx context.Context, slug string) (model.Tenant, error) {
	var out model.Tenant
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		t, err := repository.Tenants(tx).Find(ctx, repository.BySlug, strings.ToLower(slug))
		out = t
		return storeErr(err, "tenant")
	})
	return out, err
}

// ListActive lists tenants open for business. It needs no identity.
func (s *TenantService) ListActive(ctx context.Context, limit int) ([]model.Tenant, error) {
	var out []model.Tenant
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		all, err := repository.Tenants(tx).List(ctx, repository.ByActive, true)
		out = filterCap(all, nil, limit)
		return storeErr(err, "tenant")
	})
	return out, err
}

type TenantUpdate struct {
	Name        *string
	Description *string
	Tagline     *string
	Logo        *string
	CoverImage  *string
	Address     *model.Address
	Phone       *string
	Email       *string
}

func (s *TenantService) Update(ctx context.Context, id *auth.Identity, tenantID string, u TenantUpdate) (model.Tenant, error) {
	return s.adminUpdate(ctx, id, tenantID, func(t *model.Tenant) error {
		if u.Name != nil {
			if strings.TrimSpace(*u.Name) == "" {
				return apperr.Invalid("name must not be empty")
			}
			t.Name = *u.Name
		}
		setIf(&t.Description, u.Description)
		setIf(&t.Tagline, u.Tagline)
		setIf(&t.Logo, u.Logo)
		setIf(&t.CoverImage, u.CoverImage)
		setIf(&t.Phone, u.Phone)
		setIf(&t.Email, u.Email)
		if u.Address != nil {
			t.Address = *u.Address
		}
		return nil
	})
}

func (s *TenantService) UpdateSettings(ctx context.Context, id *auth.Identity, tenantID string, st model.TenantSettings) (model.Tenant, error) {
	return s.adminUpdate(ctx, id, tenantID, func(t *model.Tenant) error {
		if st.CustomizationFeeRange.Min.IsNegative() || st.CustomizationFeeRange.Min.GreaterThan(st.CustomizationFeeRange.Max) {
			return apperr.Invalid("customization fee range is invalid")
		}
		if st.DeliveryFee.IsNegative() || st.BasePrice.IsNegative() {
			return apperr.Invalid("prices must not be negative")
		}
		if len(st.ProgressStages) == 0 {
			return apperr.Invalid("at least one progress stage is required")
		}
		for _, stage := range st.ProgressStages {
			if !stage.Valid() {
				return apperr.Invalid("unknown stage %q", stage)
			}
		}
		if st.Currency == "" {
			return apperr.Invalid("currency is required")
		}
		t.Settings = st
		return nil
	})
}

func (s *TenantService) adminUpdate(ctx context.Context, id *auth.Identity, tenantID string, apply func(*model.Tenant) error) (model.Tenant, error) {
	var out model.Tenant
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		tenants := repository.Tenants(tx)
		t, err := load(ctx, tenants, tenantID, "tenant")
		if err != nil {
			return err
		}
		if err := auth.RequireSameTenant(t.ID, c.TenantID()); err != nil {
			return err
		}
		if err := auth.RequireRole(c.Role(), auth.AdminRoles...); err != nil {
			return err
		}
		if err := apply(&t); err != nil {
			return err
		}
		t.UpdatedAt = s.nowMs()
		out = t
		return storeErr(tenants.Update(ctx, t), "tenant")
	})
	return out, err
}

// SetActive enables or suspends a tenant. Platform admins only.
func (s *TenantService) SetActive(ctx context.Context, id *auth.Identity, tenantID string, active bool) (model.Tenant, error) {
	var out model.Tenant
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireRole(c.Role(), model.RolePlatformAdmin); err != nil {
			return err
		}
		tenants := repository.Tenants(tx)
		t, err := load(ctx, tenants, tenantID, "tenant")
		if err != nil {
			return err
		}
		t.IsActive = active
		t.UpdatedAt = s.nowMs()
		out = t
		return storeErr(tenants.Update(ctx, t), "tenant")
	})
	return out, err
}

// adjustTenant applies fn to the tenant's counters inside tx.
func adjustTenant(ctx context.Context, tx repository.Tx, tenantID string, at int64, fn func(*model.Tenant)) error {
	tenants := repository.Tenants(tx)
	t, err := load(ctx, tenants, tenantID, "tenant")
	if err != nil {
		return err
	}
	fn(&t)
	t.UpdatedAt = at
	return storeErr(tenants.Update(ctx, t), "tenant")
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
