package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/queue"
	"github.com/iliyamo/stylehub/internal/repository"
)

type sentMail struct {
	To, Subject, HTML string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return "msg_1", nil
}

type fakeGateway struct {
	initReq   provider.InitRequest
	initErr   error
	verify    provider.Verification
	verifyErr error
}

func (g *fakeGateway) Initialize(_ context.Context, req provider.InitRequest) (provider.InitResult, error) {
	g.initReq = req
	if g.initErr != nil {
		return provider.InitResult{}, g.initErr
	}
	return provider.InitResult{RedirectURL: "https://checkout.test/pay/" + req.TxRef, Reference: req.TxRef}, nil
}

func (g *fakeGateway) Verify(_ context.Context, _ string) (provider.Verification, error) {
	return g.verify, g.verifyErr
}

type fakeMedia struct {
	uploads []string
	deleted []string
}

func (m *fakeMedia) Upload(_ context.Context, _ []byte, filename, folder string) (provider.Asset, error) {
	m.uploads = append(m.uploads, folder+"/"+filename)
	return provider.Asset{PublicID: folder + "/" + filename, URL: "https://cdn.test/" + filename, Width: 10, Height: 10}, nil
}

func (m *fakeMedia) Delete(_ context.Context, publicID string) error {
	m.deleted = append(m.deleted, publicID)
	return nil
}

type fakeEvents struct {
	events []queue.OrderEvent
}

func (f *fakeEvents) PublishOrderEvent(_ context.Context, ev queue.OrderEvent) error {
	f.events = append(f.events, ev)
	return nil
}

var errProvider = errors.New("provider down")

type env struct {
	t       *testing.T
	ctx     context.Context
	store   *repository.MemoryStore
	svc     *Services
	now     time.Time
	mailer  *fakeMailer
	gateway *fakeGateway
	media   *fakeMedia
	events  *fakeEvents
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		t:       t,
		ctx:     context.Background(),
		store:   repository.NewMemoryStore(),
		now:     time.UnixMilli(1_700_000_000_000),
		mailer:  &fakeMailer{},
		gateway: &fakeGateway{},
		media:   &fakeMedia{},
		events:  &fakeEvents{},
	}
	e.svc = New(Deps{
		Store:   e.store,
		Mailer:  e.mailer,
		Gateway: e.gateway,
		Media:   e.media,
		Events:  e.events,
		Logger:  zaptest.NewLogger(t),
		Now:     func() time.Time { return e.now },
		AppURL:  "https://app.test",
	})
	return e
}

func (e *env) advance(d time.Duration) { e.now = e.now.Add(d) }

// account seeds an account and returns the identity that resolves to it.
func (e *env) account(name string, role model.Role, tenantID string) (model.Account, *auth.Identity) {
	e.t.Helper()
	acc := model.Account{
		ID:          ids.New(),
		ExternalID:  "user_" + name,
		Email:       name + "@example.com",
		Name:        name,
		Role:        role,
		TenantID:    tenantID,
		Preferences: model.DefaultPreferences(),
		IsActive:    true,
		CreatedAt:   e.now.UnixMilli(),
		UpdatedAt:   e.now.UnixMilli(),
	}
	require.NoError(e.t, e.store.InTx(e.ctx, func(tx repository.Tx) error {
		return repository.Accounts(tx).Insert(e.ctx, acc)
	}))
	return acc, &auth.Identity{Subject: acc.ExternalID, Email: acc.Email, Name: acc.Name}
}

func (e *env) tenant(slug string) model.Tenant {
	e.t.Helper()
	t := model.Tenant{
		ID:        ids.New(),
		Name:      slug + " tailors",
		Slug:      slug,
		Settings:  model.DefaultTenantSettings(),
		Badges:    []string{},
		IsActive:  true,
		CreatedAt: e.now.UnixMilli(),
		UpdatedAt: e.now.UnixMilli(),
	}
	require.NoError(e.t, e.store.InTx(e.ctx, func(tx repository.Tx) error {
		return repository.Tenants(tx).Insert(e.ctx, t)
	}))
	return t
}

func (e *env) style(admin *auth.Identity, tenantID string, price int64) model.Style {
	e.t.Helper()
	st, err := e.svc.Styles.Create(e.ctx, admin, StyleInput{
		TenantID:  tenantID,
		Title:     "Agbada",
		Category:  "traditional",
		Gender:    model.GenderMen,
		BasePrice: decimal.NewFromInt(price),
		Currency:  "NGN",
	})
	require.NoError(e.t, err)
	return st
}

func (e *env) order(customer *auth.Identity, styleID string) model.Order {
	e.t.Helper()
	o, err := e.svc.Orders.Create(e.ctx, customer, OrderInput{
		StyleID:      styleID,
		Measurements: map[string]float64{"chest": 100},
		Delivery:     model.Delivery{Phone: "0800"},
	})
	require.NoError(e.t, err)
	return o
}

func (e *env) audits(tenantID string) []model.AuditEntry {
	e.t.Helper()
	var out []model.AuditEntry
	require.NoError(e.t, e.store.View(e.ctx, func(tx repository.Tx) error {
		var err error
		out, err = repository.AuditEntries(tx).List(e.ctx, repository.ByTenant, tenantID)
		return err
	}))
	return out
}

func actions(entries []model.AuditEntry) []string {
	out := make([]string, len(entries))
	for i, a := range entries {
		out[i] = a.Action
	}
	return out
}

// shop is a tenant with an admin, a manager, a worker, a customer and one
// style priced at 5000 NGN.
type shop struct {
	tenant   model.Tenant
	admin    *auth.Identity
	manager  *auth.Identity
	worker   *auth.Identity
	customer *auth.Identity
	adminAcc model.Account
	mgrAcc   model.Account
	wrkAcc   model.Account
	custAcc  model.Account
	style    model.Style
}

func (e *env) shop(slug string) shop {
	e.t.Helper()
	s := shop{tenant: e.tenant(slug)}
	s.adminAcc, s.admin = e.account(slug+"-admin", model.RoleOrgAdmin, s.tenant.ID)
	s.mgrAcc, s.manager = e.account(slug+"-manager", model.RoleManager, s.tenant.ID)
	s.wrkAcc, s.worker = e.account(slug+"-worker", model.RoleWorker, s.tenant.ID)
	s.custAcc, s.customer = e.account(slug+"-customer", model.RoleCustomer, "")
	s.style = e.style(s.admin, s.tenant.ID, 5000)
	return s
}
