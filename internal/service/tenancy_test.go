package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/model"
)

func TestCallerMustResolve(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")

	_, err := e.svc.Orders.Create(e.ctx, nil, OrderInput{StyleID: s.style.ID})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = e.svc.Accounts.Me(e.ctx, &auth.Identity{Subject: "user_nobody"})
	assert.ErrorIs(t, err, apperr.ErrAccountNotFound)
}

func TestStaffOfAnotherTenantIsDenied(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	other := e.shop("bola")
	o := e.order(s.customer, s.style.ID)
	_, co := e.checkout(s)
	a := e.assign(s, o)
	rv, err := e.svc.Reviews.Create(e.ctx, s.customer, ReviewInput{OrderID: e.completed(s).ID, Rating: 5, Content: "neat"})
	require.NoError(t, err)
	item, err := e.svc.Portfolio.Add(e.ctx, s.worker, PortfolioInput{WorkerID: s.wrkAcc.ID, Title: "Agbada", IsPublic: true})
	require.NoError(t, err)
	before := len(e.audits(s.tenant.ID))

	cases := map[string]func() error{
		"order get": func() error {
			_, err := e.svc.Orders.Get(e.ctx, other.admin, o.ID)
			return err
		},
		"order status": func() error {
			_, err := e.svc.Orders.UpdateStatus(e.ctx, other.admin, o.ID, model.OrderConfirmed)
			return err
		},
		"order list": func() error {
			_, err := e.svc.Orders.ListByTenant(e.ctx, other.admin, s.tenant.ID, OrderFilter{})
			return err
		},
		"assignment": func() error {
			_, err := e.svc.Assignments.Create(e.ctx, other.manager, AssignmentInput{OrderID: o.ID, WorkerID: other.wrkAcc.ID, Stage: model.StageCutting})
			return err
		},
		"style update": func() error {
			title := "stolen"
			_, err := e.svc.Styles.Update(e.ctx, other.admin, s.style.ID, StyleUpdate{Title: &title})
			return err
		},
		"payment status": func() error {
			_, err := e.svc.Payments.UpdateStatus(e.ctx, other.manager, StatusUpdate{TransactionRef: co.Payment.TransactionRef, Status: model.PaymentCancelled})
			return err
		},
		"invitations": func() error {
			_, err := e.svc.Invitations.ListByTenant(e.ctx, other.admin, s.tenant.ID, nil, 0)
			return err
		},
		"audit": func() error {
			_, err := e.svc.Audit.List(e.ctx, other.admin, s.tenant.ID, "", 0)
			return err
		},
		"tenant settings": func() error {
			_, err := e.svc.Tenants.UpdateSettings(e.ctx, other.admin, s.tenant.ID, model.DefaultTenantSettings())
			return err
		},
		"members": func() error {
			_, err := e.svc.Accounts.ListByTenant(e.ctx, other.admin, s.tenant.ID, nil, 0)
			return err
		},
		"bind their admin": func() error {
			_, err := e.svc.Accounts.BindMembership(e.ctx, other.admin, s.adminAcc.ExternalID, other.tenant.ID, model.RoleWorker)
			return err
		},
		"assignment status": func() error {
			_, err := e.svc.Assignments.UpdateStatus(e.ctx, other.manager, a.ID, model.AssignmentAccepted)
			return err
		},
		"assignment progress": func() error {
			_, err := e.svc.Assignments.AddProgressUpdate(e.ctx, other.manager, a.ID, "peek", nil)
			return err
		},
		"payment by ref": func() error {
			_, err := e.svc.Payments.GetByTransactionRef(e.ctx, other.manager, co.Payment.TransactionRef)
			return err
		},
		"payments of order": func() error {
			_, err := e.svc.Payments.ListByOrder(e.ctx, other.manager, o.ID)
			return err
		},
		"review status": func() error {
			_, err := e.svc.Reviews.UpdateStatus(e.ctx, other.manager, rv.ID, model.ReviewRejected)
			return err
		},
		"review respond": func() error {
			_, err := e.svc.Reviews.Respond(e.ctx, other.admin, rv.ID, "ours now")
			return err
		},
		"reviews of tenant": func() error {
			_, err := e.svc.Reviews.ListByTenant(e.ctx, other.manager, s.tenant.ID, nil, 0)
			return err
		},
		"reviews of style": func() error {
			_, err := e.svc.Reviews.ListByStyle(e.ctx, other.manager, s.style.ID, nil, 0)
			return err
		},
		"portfolio update": func() error {
			title := "stolen"
			_, err := e.svc.Portfolio.Update(e.ctx, other.manager, item.ID, PortfolioUpdate{Title: &title})
			return err
		},
		"portfolio delete": func() error {
			return e.svc.Portfolio.Delete(e.ctx, other.admin, item.ID)
		},
		"portfolio of worker": func() error {
			_, err := e.svc.Portfolio.ListByWorker(e.ctx, other.manager, s.wrkAcc.ID)
			return err
		},
		"portfolio linked to their order": func() error {
			_, err := e.svc.Portfolio.Add(e.ctx, other.worker, PortfolioInput{WorkerID: other.wrkAcc.ID, OrderID: o.ID, Title: "not ours"})
			return err
		},
		"save for their worker": func() error {
			_, err := e.svc.SavedStyles.Save(e.ctx, other.manager, s.wrkAcc.ID, other.style.ID, "")
			return err
		},
		"save for a customer": func() error {
			_, err := e.svc.SavedStyles.Save(e.ctx, other.manager, s.custAcc.ID, s.style.ID, "")
			return err
		},
		"saved styles of worker": func() error {
			_, err := e.svc.SavedStyles.ListByUser(e.ctx, other.manager, s.wrkAcc.ID, 0)
			return err
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), apperr.ErrCrossTenant)
		})
	}

	assert.Len(t, e.audits(s.tenant.ID), before)
	admin, err := e.svc.Accounts.Get(e.ctx, s.admin, s.adminAcc.ID)
	require.NoError(t, err)
	assert.Equal(t, s.tenant.ID, admin.TenantID)
	assert.Equal(t, model.RoleOrgAdmin, admin.Role)
}

func TestBindMembership(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	newcomer, _ := e.account("kemi", model.RoleCustomer, "")

	_, err := e.svc.Accounts.BindMembership(e.ctx, s.manager, newcomer.ExternalID, s.tenant.ID, model.RoleWorker)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	bound, err := e.svc.Accounts.BindMembership(e.ctx, s.admin, newcomer.ExternalID, s.tenant.ID, model.RoleWorker)
	require.NoError(t, err)
	assert.Equal(t, s.tenant.ID, bound.TenantID)

	promoted, err := e.svc.Accounts.BindMembership(e.ctx, s.admin, newcomer.ExternalID, s.tenant.ID, model.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, promoted.Role)

	_, err = e.svc.Accounts.BindMembership(e.ctx, s.admin, newcomer.ExternalID, s.tenant.ID, model.RolePlatformAdmin)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	root, _ := e.account("root", model.RolePlatformAdmin, s.tenant.ID)
	_, err = e.svc.Accounts.BindMembership(e.ctx, s.admin, root.ExternalID, s.tenant.ID, model.RoleWorker)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCustomerSeesOnlyOwnOrders(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	o := e.order(s.customer, s.style.ID)
	_, stranger := e.account("stranger", model.RoleCustomer, "")

	_, err := e.svc.Orders.Get(e.ctx, stranger, o.ID)
	assert.ErrorIs(t, err, apperr.ErrCrossTenant)

	got, err := e.svc.Orders.GetByNumber(e.ctx, s.customer, o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestStaffSeeOnlyTheirTenantsOrdersOfACustomer(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	other := e.shop("bola")
	e.order(s.customer, s.style.ID)
	e.order(s.customer, other.style.ID)

	all, err := e.svc.Orders.ListByCustomer(e.ctx, s.customer, s.custAcc.ID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ours, err := e.svc.Orders.ListByCustomer(e.ctx, other.manager, s.custAcc.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, ours, 1)
	assert.Equal(t, other.tenant.ID, ours[0].TenantID)
}

func TestAuditListIsForAdmins(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	e.assign(s, e.order(s.customer, s.style.ID))

	_, err := e.svc.Audit.List(e.ctx, s.manager, s.tenant.ID, "", 0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	entries, err := e.svc.Audit.List(e.ctx, s.admin, s.tenant.ID, "assignment.create", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, s.mgrAcc.ID, entries[0].ActorID)

	none, err := e.svc.Audit.List(e.ctx, s.admin, s.tenant.ID, "huddle.end", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
