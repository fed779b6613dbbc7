package service

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

type StyleService struct{ *core }

type StyleInput struct {
	TenantID     string
	Title        string
	Description  string
	Category     string
	SubCategory  string
	Gender       model.Gender
	Images       []model.Image
	BasePrice    decimal.Decimal
	Currency     string
	IsNegotiable bool
	Measurements model.MeasurementSet
	Tags         []string
	IsFeatured   bool
}

func (in StyleInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Category) == "" {
		return apperr.Invalid("title and category are required")
	}
	if !in.Gender.Valid() {
		return apperr.Invalid("unknown gender %q", in.Gender)
	}
	if in.BasePrice.IsNegative() {
		return apperr.Invalid("base price must not be negative")
	}
	return nil
}

// Create adds a style to the tenant's catalogue.
func (s *StyleService) Create(ctx context.Context, id *auth.Identity, in StyleInput) (model.Style, error) {
	var out model.Style
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireStaff(c, in.TenantID); err != nil {
			return err
		}
		if err := in.validate(); err != nil {
			return err
		}
		now := s.nowMs()
		st := model.Style{
			ID:           ids.New(),
			TenantID:     in.TenantID,
			Title:        in.Title,
			Description:  in.Description,
			Category:     in.Category,
			SubCategory:  in.SubCategory,
			Gender:       in.Gender,
			Images:       nonNil(in.Images),
			BasePrice:    in.BasePrice,
			Currency:     in.Currency,
			IsNegotiable: in.IsNegotiable,
			Measurements: in.Measurements,
			Tags:         nonNil(in.Tags),
			IsActive:     true,
			IsFeatured:   in.IsFeatured,
			CreatedBy:    c.ID(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if st.Currency == "" {
			st.Currency = "NGN"
		}
		if err := repository.Styles(tx).Insert(ctx, st); err != nil {
			return storeErr(err, "style")
		}
		out = st
		return adjustTenant(ctx, tx, in.TenantID, now, func(t *model.Tenant) { t.Stats.TotalDesigns++ })
	})
	return out, err
}

// Get returns a style. Active styles are public; inactive ones are
// visible to the tenant's staff only.
func (s *StyleService) Get(ctx context.Context, id *auth.Identity, styleID string) (model.Style, error) {
	var out model.Style
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		st, err := load(ctx, repository.Styles(tx), styleID, "style")
		if err != nil {
			return err
		}
		if !st.IsActive {
			c, err := auth.ResolveCaller(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := auth.RequireStaff(c, st.TenantID); err != nil {
				return err
			}
		}
		out = st
		return nil
	})
	return out, err
}

// ListByTenant lists a tenant's styles. Inactive styles are visible to the
// tenant's staff only.
func (s *StyleService) ListByTenant(ctx context.Context, id *auth.Identity, tenantID string, isActive *bool, limit int) ([]model.Style, error) {
	var out []model.Style
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		staff := auth.RequireStaff(c, tenantID) == nil
		if !staff && (isActive == nil || !*isActive) {
			t := true
			isActive = &t
		}
		all, err := repository.Styles(tx).List(ctx, repository.ByTenant, tenantID)
		if err != nil {
			return storeErr(err, "style")
		}
		var keep func(model.Style) bool
		if isActive != nil {
			want := *isActive
			keep = func(st model.Style) bool { return st.IsActive == want }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}

// StyleQuery filters the public catalogue.
type StyleQuery struct {
	// Search matches title, description and tags, case-insensitively.
	Search   string
	Featured bool
	Category string
	Gender   model.Gender
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Sort is one of newest (default), price_asc, price_desc, popular.
	Sort  string
	Limit int
}

func (q StyleQuery) match(st model.Style) bool {
	if q.Featured && !st.IsFeatured {
		return false
	}
	if q.Search != "" && !matchesText(st, strings.ToLower(q.Search)) {
		return false
	}
	if q.Category != "" && st.Category != q.Category {
		return false
	}
	if q.Gender != "" && st.Gender != q.Gender {
		return false
	}
	if q.MinPrice != nil && st.BasePrice.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && st.BasePrice.GreaterThan(*q.MaxPrice) {
		return false
	}
	return true
}

func matchesText(st model.Style, needle string) bool {
	if strings.Contains(strings.ToLower(st.Title), needle) || strings.Contains(strings.ToLower(st.Description), needle) {
		return true
	}
	for _, t := range st.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// ListActive browses active styles across tenants. It needs no identity.
func (s *StyleService) ListActive(ctx context.Context, q StyleQuery) ([]model.Style, error) {
	var out []model.Style
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		all, err := repository.Styles(tx).List(ctx, repository.ByActive, true)
		if err != nil {
			return storeErr(err, "style")
		}
		matched := filterCap(all, q.match, 0)
		switch q.Sort {
		case "price_asc":
			sort.SliceStable(matched, func(i, j int) bool { return matched[i].BasePrice.LessThan(matched[j].BasePrice) })
		case "price_desc":
			sort.SliceStable(matched, func(i, j int) bool { return matched[i].BasePrice.GreaterThan(matched[j].BasePrice) })
		case "popular":
			sort.SliceStable(matched, func(i, j int) bool { return matched[i].Stats.Orders > matched[j].Stats.Orders })
		}
		out = filterCap(matched, nil, q.Limit)
		return nil
	})
	return out, err
}

// StyleUpdate changes only the fields that are set.
type StyleUpdate struct {
	Title        *string
	Description  *string
	Category     *string
	SubCategory  *string
	Gender       *model.Gender
	BasePrice    *decimal.Decimal
	Currency     *string
	IsNegotiable *bool
	Measurements *model.MeasurementSet
	Tags         *[]string
	IsActive     *bool
	IsFeatured   *bool
}

func (s *StyleService) Update(ctx context.Context, id *auth.Identity, styleID string, u StyleUpdate) (model.Style, error) {
	return s.staffUpdate(ctx, id, styleID, func(st *model.Style) error {
		if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
			return apperr.Invalid("title must not be empty")
		}
		if u.Gender != nil && !u.Gender.Valid() {
			return apperr.Invalid("unknown gender %q", *u.Gender)
		}
		if u.BasePrice != nil && u.BasePrice.IsNegative() {
			return apperr.Invalid("base price must not be negative")
		}
		setIf(&st.Title, u.Title)
		setIf(&st.Description, u.Description)
		setIf(&st.Category, u.Category)
		setIf(&st.SubCategory, u.SubCategory)
		setIf(&st.Gender, u.Gender)
		setIf(&st.BasePrice, u.BasePrice)
		setIf(&st.Currency, u.Currency)
		setIf(&st.IsNegotiable, u.IsNegotiable)
		setIf(&st.Measurements, u.Measurements)
		setIf(&st.Tags, u.Tags)
		setIf(&st.IsActive, u.IsActive)
		setIf(&st.IsFeatured, u.IsFeatured)
		return nil
	})
}

// UpdateImages replaces the style's images.
func (s *StyleService) UpdateImages(ctx context.Context, id *auth.Identity, styleID string, images []model.Image) (model.Style, error) {
	return s.staffUpdate(ctx, id, styleID, func(st *model.Style) error {
		for _, img := range images {
			if img.URL == "" {
				return apperr.Invalid("image url is required")
			}
		}
		st.Images = nonNil(images)
		return nil
	})
}

func (s *StyleService) staffUpdate(ctx context.Context, id *auth.Identity, styleID string, apply func(*model.Style) error) (model.Style, error) {
	var out model.Style
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		styles := repository.Styles(tx)
		st, err := load(ctx, styles, styleID, "style")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, st.TenantID); err != nil {
			return err
		}
		if err := apply(&st); err != nil {
			return err
		}
		st.UpdatedAt = s.nowMs()
		out = st
		return storeErr(styles.Update(ctx, st), "style")
	})
	return out, err
}

// RecordView counts one view of an active style. Anonymous views count.
func (s *StyleService) RecordView(ctx context.Context, styleID string) error {
	return s.Store.InTx(ctx, func(tx repository.Tx) error {
		styles := repository.Styles(tx)
		st, err := load(ctx, styles, styleID, "style")
		if err != nil {
			return err
		}
		if !st.IsActive {
			return apperr.NotFound("style")
		}
		st.Stats.Views++
		return storeErr(styles.Update(ctx, st), "style")
	})
}

// Delete removes the style and then its hosted images. Image clean-up
// failures are logged only; the style is already gone.
func (s *StyleService) Delete(ctx context.Context, id *auth.Identity, styleID string) error {
	var images []model.Image
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		styles := repository.Styles(tx)
		st, err := load(ctx, styles, styleID, "style")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, st.TenantID); err != nil {
			return err
		}
		if err := styles.Delete(ctx, st.ID); err != nil {
			return storeErr(err, "style")
		}
		images = st.Images
		return adjustTenant(ctx, tx, st.TenantID, s.nowMs(), func(t *model.Tenant) {
			if t.Stats.TotalDesigns > 0 {
				t.Stats.TotalDesigns--
			}
		})
	})
	if err != nil || s.Media == nil {
		return err
	}
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := s.Media.Delete(ctx, img.PublicID); err != nil {
			s.Logger.Warn("style image cleanup failed", zap.String("style_id", styleID), zap.String("public_id", img.PublicID), zap.Error(err))
		}
	}
	return nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
