package service

import (
	"context"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
	"github.com/iliyamo/stylehub/internal/utils"
)

// InvitationTTL is how long an invitation can be redeemed.
const InvitationTTL = 7 * 24 * time.Hour

type InvitationService struct{ *core }

type InvitationInput struct {
	TenantID string
	Email    string
	Role     model.Role
	Message  string
}

// Create issues an invitation and e-mails its token. A failed send rolls
// the invitation back.
func (s *InvitationService) Create(ctx context.Context, id *auth.Identity, in InvitationInput) (model.Invitation, error) {
	var out model.Invitation
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireStaff(c, in.TenantID); err != nil {
			return err
		}
		switch in.Role {
		case model.RoleOrgAdmin, model.RoleManager, model.RoleWorker:
		default:
			return apperr.Invalid("role must be org_admin, manager or worker")
		}
		if in.Role == model.RoleOrgAdmin && !auth.HasRole(c.Role(), auth.AdminRoles...) {
			return apperr.Forbidden("only admins can invite admins")
		}
		addr, err := mail.ParseAddress(in.Email)
		if err != nil {
			return apperr.Invalid("invalid e-mail address")
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.InvitationCreate); err != nil {
			return err
		}
		tenant, err := load(ctx, repository.Tenants(tx), in.TenantID, "tenant")
		if err != nil {
			return err
		}
		token, err := utils.RandomToken(32)
		if err != nil {
			return err
		}
		now := s.Now()
		inv := model.Invitation{
			ID:        ids.New(),
			TenantID:  tenant.ID,
			Email:     strings.ToLower(addr.Address),
			Role:      in.Role,
			InvitedBy: c.ID(),
			TokenHash: utils.HashToken(token),
			Status:    model.InvitationPending,
			Message:   in.Message,
			ExpiresAt: now.Add(InvitationTTL).UnixMilli(),
			CreatedAt: now.UnixMilli(),
			UpdatedAt: now.UnixMilli(),
		}
		if err := repository.Invitations(tx).Insert(ctx, inv); err != nil {
			return storeErr(err, "invitation")
		}
		if err := s.sendInvitation(ctx, inv, tenant, c.Account, token); err != nil {
			return err
		}
		out = inv
		return s.record(ctx, tx, audit.Entry{
			TenantID:   tenant.ID,
			ActorID:    c.ID(),
			Action:     audit.InvitationCreate,
			TargetType: "invitation",
			TargetID:   inv.ID,
			Metadata:   map[string]any{"email": inv.Email, "role": string(inv.Role)},
		})
	})
	return out, err
}

func (s *InvitationService) sendInvitation(ctx context.Context, inv model.Invitation, t model.Tenant, inviter model.Account, token string) error {
	if s.Mailer == nil {
		return apperr.Upstream("mailer", errMailerUnset)
	}
	subject, html, err := provider.RenderInvitation(provider.InvitationEmail{
		TenantName:  t.Name,
		InviterName: inviter.Name,
		Role:        strings.ReplaceAll(string(inv.Role), "_", " "),
		Message:     inv.Message,
		AcceptURL:   strings.TrimRight(s.AppURL, "/") + "/dashboard/team/invite?token=" + url.QueryEscape(token),
		ExpiresOn:   time.UnixMilli(inv.ExpiresAt).UTC().Format("2 Jan 2006"),
	})
	if err != nil {
		return err
	}
	if _, err := s.Mailer.Send(ctx, inv.Email, subject, html); err != nil {
		return apperr.Upstream("mailer", err)
	}
	return nil
}

// Accept redeems token for the caller, binding them to the tenant with
// the invited role. An invitation past its expiry is marked expired and
// rejected.
func (s *InvitationService) Accept(ctx context.Context, id *auth.Identity, token string) (model.Invitation, error) {
	var (
		out     model.Invitation
		expired bool
	)
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		invitations := repository.Invitations(tx)
		inv, err := invitations.Find(ctx, repository.ByToken, utils.HashToken(token))
		if err != nil {
			return storeErr(err, "invitation")
		}
		if inv.Status != model.InvitationPending {
			return apperr.Conflict("invitation is %s", inv.Status)
		}
		now := s.nowMs()
		if inv.ExpiresAt <= now {
			inv.Status = model.InvitationExpired
			inv.UpdatedAt = now
			expired = true
			return storeErr(invitations.Update(ctx, inv), "invitation")
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.InvitationAccept); err != nil {
			return err
		}
		inv.Status = model.InvitationAccepted
		inv.AcceptedAt = &now
		inv.UpdatedAt = now
		if err := invitations.Update(ctx, inv); err != nil {
			return storeErr(err, "invitation")
		}
		acc := c.Account
		acc.TenantID = inv.TenantID
		acc.Role = inv.Role
		acc.UpdatedAt = now
		if err := repository.Accounts(tx).Update(ctx, acc); err != nil {
			return storeErr(err, "account")
		}
		out = inv
		return s.record(ctx, tx, audit.Entry{
			TenantID:   inv.TenantID,
			ActorID:    c.ID(),
			Action:     audit.InvitationAccept,
			TargetType: "invitation",
			TargetID:   inv.ID,
			Metadata:   map[string]any{"role": string(inv.Role)},
		})
	})
	if err == nil && expired {
		return model.Invitation{}, apperr.Conflict("invitation has expired")
	}
	return out, err
}

// Cancel withdraws a pending invitation.
func (s *InvitationService) Cancel(ctx context.Context, id *auth.Identity, invitationID string) (model.Invitation, error) {
	var out model.Invitation
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		invitations := repository.Invitations(tx)
		inv, err := load(ctx, invitations, invitationID, "invitation")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, inv.TenantID); err != nil {
			return err
		}
		if inv.Status != model.InvitationPending {
			return apperr.Conflict("invitation is %s", inv.Status)
		}
		inv.Status = model.InvitationCancelled
		inv.UpdatedAt = s.nowMs()
		if err := invitations.Update(ctx, inv); err != nil {
			return storeErr(err, "invitation")
		}
		out = inv
		return s.record(ctx, tx, audit.Entry{
			TenantID:   inv.TenantID,
			ActorID:    c.ID(),
			Action:     audit.InvitationCancel,
			TargetType: "invitation",
			TargetID:   inv.ID,
		})
	})
	return out, err
}

func (s *InvitationService) ListByTenant(ctx context.Context, id *auth.Identity, tenantID string, status *model.InvitationStatus, limit int) ([]model.Invitation, error) {
	var out []model.Invitation
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireSameTenant(tenantID, c.TenantID()); err != nil {
			return err
		}
		all, err := repository.Invitations(tx).List(ctx, repository.ByTenant, tenantID)
		if err != nil {
			return storeErr(err, "invitation")
		}
		var keep func(model.Invitation) bool
		if status != nil {
			keep = func(i model.Invitation) bool { return i.Status == *status }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}

// InvitationPreview is what an invitee sees before accepting.
type InvitationPreview struct {
	TenantName string                 `json:"tenantName"`
	Role       model.Role             `json:"role"`
	Status     model.InvitationStatus `json:"status"`
	ExpiresAt  int64                  `json:"expiresAt"`
	Expired    bool                   `json:"expired"`
}

// Preview describes the invitation behind token without redeeming it.
func (s *InvitationService) Preview(ctx context.Context, id *auth.Identity, token string) (InvitationPreview, error) {
	var out InvitationPreview
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		inv, err := repository.Invitations(tx).Find(ctx, repository.ByToken, utils.HashToken(token))
		if err != nil {
			return storeErr(err, "invitation")
		}
		t, err := load(ctx, repository.Tenants(tx), inv.TenantID, "tenant")
		if err != nil {
			return err
		}
		out = InvitationPreview{
			TenantName: t.Name,
			Role:       inv.Role,
			Status:     inv.Status,
			ExpiresAt:  inv.ExpiresAt,
			Expired:    inv.ExpiresAt <= s.nowMs(),
		}
		return nil
	})
	return out, err
}
