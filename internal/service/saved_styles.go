package service

import (
	"context"
	"errors"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

type SavedStyleService struct{ *core }

// Save bookmarks styleID for userID. Staff of the account's tenant may
// save on a customer's behalf.
func (s *SavedStyleService) Save(ctx context.Context, id *auth.Identity, userID, styleID, notes string) (model.SavedStyle, error) {
	var out model.SavedStyle
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		owner, err := load(ctx, repository.Accounts(tx), userID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, owner.ID, owner.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.StyleSave); err != nil {
			return err
		}
		styles := repository.Styles(tx)
		st, err := load(ctx, styles, styleID, "style")
		if err != nil {
			return err
		}
		saved := repository.SavedStyles(tx)
		if _, err := saved.Find(ctx, repository.ByUserStyle, owner.ID, st.ID); err == nil {
			return apperr.Conflict("style already saved")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return storeErr(err, "saved style")
		}
		now := s.nowMs()
		ss := model.SavedStyle{
			ID:        ids.New(),
			UserID:    owner.ID,
			StyleID:   st.ID,
			TenantID:  st.TenantID,
			Notes:     notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := saved.Insert(ctx, ss); err != nil {
			return storeErr(err, "saved style")
		}
		st.Stats.Likes++
		st.UpdatedAt = now
		if err := styles.Update(ctx, st); err != nil {
			return storeErr(err, "style")
		}
		owner.Stats.SavedStyles++
		owner.UpdatedAt = now
		if err := repository.Accounts(tx).Update(ctx, owner); err != nil {
			return storeErr(err, "account")
		}
		out = ss
		return s.record(ctx, tx, audit.Entry{
			TenantID:   st.TenantID,
			ActorID:    c.ID(),
			Action:     audit.StyleSave,
			TargetType: "style",
			TargetID:   st.ID,
			Metadata:   map[string]any{"userId": owner.ID},
		})
	})
	return out, err
}

// Unsave removes the bookmark. Counters never go below zero.
func (s *SavedStyleService) Unsave(ctx context.Context, id *auth.Identity, userID, styleID string) error {
	return s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		accounts := repository.Accounts(tx)
		owner, err := load(ctx, accounts, userID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, owner.ID, owner.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		saved := repository.SavedStyles(tx)
		ss, err := saved.Find(ctx, repository.ByUserStyle, owner.ID, styleID)
		if err != nil {
			return storeErr(err, "saved style")
		}
		if err := saved.Delete(ctx, ss.ID); err != nil {
			return storeErr(err, "saved style")
		}
		now := s.nowMs()
		styles := repository.Styles(tx)
		st, err := styles.Get(ctx, styleID)
		switch {
		case err == nil:
			if st.Stats.Likes > 0 {
				st.Stats.Likes--
			}
			st.UpdatedAt = now
			if err := styles.Update(ctx, st); err != nil {
				return storeErr(err, "style")
			}
		case !errors.Is(err, repository.ErrNotFound):
			return storeErr(err, "style")
		}
		if owner.Stats.SavedStyles > 0 {
			owner.Stats.SavedStyles--
		}
		owner.UpdatedAt = now
		if err := accounts.Update(ctx, owner); err != nil {
			return storeErr(err, "account")
		}
		return s.record(ctx, tx, audit.Entry{
			TenantID:   ss.TenantID,
			ActorID:    c.ID(),
			Action:     audit.StyleUnsave,
			TargetType: "style",
			TargetID:   styleID,
			Metadata:   map[string]any{"userId": owner.ID},
		})
	})
}

func (s *SavedStyleService) ListByUser(ctx context.Context, id *auth.Identity, userID string, limit int) ([]model.SavedStyle, error) {
	var out []model.SavedStyle
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		owner, err := load(ctx, repository.Accounts(tx), userID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, owner.ID, owner.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		all, err := repository.SavedStyles(tx).List(ctx, repository.ByUser, owner.ID)
		out = filterCap(all, nil, limit)
		return storeErr(err, "saved style")
	})
	return out, err
}

// IsSaved reports whether the caller has bookmarked styleID.
func (s *SavedStyleService) IsSaved(ctx context.Context, id *auth.Identity, styleID string) (bool, error) {
	var out bool
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		_, err := repository.SavedStyles(tx).Find(ctx, repository.ByUserStyle, c.ID(), styleID)
		switch {
		case err == nil:
			out = true
		case !errors.Is(err, repository.ErrNotFound):
			return storeErr(err, "saved style")
		}
		return nil
	})
	return out, err
}
