package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/stylehub/internal/config"
	"github.com/iliyamo/stylehub/internal/handler"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/repository"
	"github.com/iliyamo/stylehub/internal/service"
	"github.com/iliyamo/stylehub/internal/utils"
)

const (
	secret      = "identity-secret"
	webhookHash = "hook-secret"
)

type stubGateway struct {
	verify provider.Verification
}

func (g *stubGateway) Initialize(_ context.Context, req provider.InitRequest) (provider.InitResult, error) {
	return provider.InitResult{RedirectURL: "https://checkout.test/" + req.TxRef, Reference: req.TxRef}, nil
}

func (g *stubGateway) Verify(_ context.Context, _ string) (provider.Verification, error) {
	return g.verify, nil
}

type stubMailer struct{}

func (stubMailer) Send(context.Context, string, string, string) (string, error) { return "id", nil }

type api struct {
	t       *testing.T
	e       *echo.Echo
	gateway *stubGateway
}

func newAPI(t *testing.T) *api {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := zaptest.NewLogger(t)
	gw := &stubGateway{}
	svc := service.New(service.Deps{
		Store:   repository.NewMemoryStore(),
		Mailer:  stubMailer{},
		Gateway: gw,
		Logger:  logger,
		AppURL:  "https://app.test",
	})
	e := New(handler.NewHandler(svc, logger, webhookHash), Options{
		IdentitySecret: secret,
		RateLimit:      config.RateLimitConfig{Enabled: true, Limit: 1000, Window: time.Minute, KeyStrategy: "ip_user_route", Prefix: "rl"},
		Cache:          config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"},
		Redis:          rdb,
		Logger:         logger,
	})
	return &api{t: t, e: e, gateway: gw}
}

func (a *api) token(sub string) string {
	a.t.Helper()
	tok, err := utils.SignIdentity(secret, sub, sub+"@example.com", sub, time.Hour)
	require.NoError(a.t, err)
	return tok.Token
}

func (a *api) do(method, path, sub string, body any, header ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if sub != "" {
		req.Header.Set("Authorization", "Bearer "+a.token(sub))
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// shop creates a tenant owned by "owner", one style and a customer order.
func (a *api) shop() (model.Tenant, model.Style, model.Order) {
	t := a.t
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/v1/accounts/sync", "owner", echo.Map{}).Code)
	rec := a.do(http.MethodPost, "/v1/tenants", "owner", echo.Map{"name": "Ade Couture", "slug": "ade"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tn := decode[model.Tenant](t, rec)

	rec = a.do(http.MethodPost, "/v1/styles", "owner", echo.Map{
		"tenantId": tn.ID, "title": "Agbada", "category": "traditional", "gender": "men",
		"basePrice": "5000", "currency": "NGN",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	st := decode[model.Style](t, rec)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/v1/accounts/sync", "buyer", echo.Map{}).Code)
	rec = a.do(http.MethodPost, "/v1/orders", "buyer", echo.Map{"styleId": st.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return tn, st, decode[model.Order](t, rec)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/metrics", "", nil).Code)
}

func TestErrorKindsMapToStatus(t *testing.T) {
	a := newAPI(t)
	tn, _, o := a.shop()

	rec := a.do(http.MethodGet, "/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/v1/me", "ghost", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "account_not_found", decode[map[string]string](t, rec)["error"])

	rec = a.do(http.MethodGet, "/v1/tenants/"+tn.ID+"/orders", "buyer", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "cross_tenant_access_denied", decode[map[string]string](t, rec)["error"])

	rec = a.do(http.MethodGet, "/v1/orders/missing", "buyer", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", decode[map[string]string](t, rec)["message"])

	rec = a.do(http.MethodPut, "/v1/orders/"+o.ID+"/status", "buyer", echo.Map{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPut, "/v1/orders/"+o.ID+"/status", "owner", echo.Map{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/v1/accounts/"+o.CustomerID+"/orders?limit=-1", "buyer", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicCatalogueIsCached(t *testing.T) {
	a := newAPI(t)
	_, st, _ := a.shop()

	first := a.do(http.MethodGet, "/v1/styles?sort=price_asc", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	list := decode[[]model.Style](t, first)
	require.Len(t, list, 1)
	assert.Equal(t, st.ID, list[0].ID)

	second := a.do(http.MethodGet, "/v1/styles?sort=price_asc", "", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	rec := a.do(http.MethodGet, "/v1/styles/"+st.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, "/v1/styles?minPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutAndWebhookReconcile(t *testing.T) {
	a := newAPI(t)
	_, _, o := a.shop()

	rec := a.do(http.MethodPost, "/v1/orders/"+o.ID+"/checkout", "buyer", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	co := decode[service.Checkout](t, rec)
	assert.Equal(t, "https://checkout.test/"+co.Payment.TransactionRef, co.RedirectURL)

	hook := echo.Map{"event": "charge.completed", "data": echo.Map{"id": 987, "tx_ref": co.Payment.TransactionRef, "status": "successful"}}
	rec = a.do(http.MethodPost, "/webhooks/payments", "", hook, "verif-hash", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.gateway.verify = provider.Verification{
		Status: "successful", TxRef: co.Payment.TransactionRef, TransactionID: "987",
		Amount: o.Pricing.Total, Currency: o.Pricing.Currency,
	}
	rec = a.do(http.MethodPost, "/webhooks/payments", "", hook, "verif-hash", webhookHash)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "successful", decode[map[string]string](t, rec)["status"])

	rec = a.do(http.MethodGet, "/v1/orders/"+o.ID, "buyer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PaymentPaid, decode[model.Order](t, rec).PaymentStatus)
}

func TestWebhookMismatchIsAcknowledgedAsFailed(t *testing.T) {
	a := newAPI(t)
	_, _, o := a.shop()
	co := decode[service.Checkout](t, a.do(http.MethodPost, "/v1/orders/"+o.ID+"/checkout", "buyer", nil))

	a.gateway.verify = provider.Verification{
		Status: "successful", TxRef: co.Payment.TransactionRef, TransactionID: "1",
		Amount: o.Pricing.Total.Sub(decimal.NewFromInt(1000)), Currency: o.Pricing.Currency,
	}
	hook := echo.Map{"event": "charge.completed", "data": echo.Map{"id": 1, "tx_ref": co.Payment.TransactionRef}}
	rec := a.do(http.MethodPost, "/webhooks/payments", "", hook, "verif-hash", webhookHash)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "failed", decode[map[string]string](t, rec)["status"])

	rec = a.do(http.MethodGet, "/v1/payments/"+co.Payment.TransactionRef, "buyer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.MismatchReason, decode[model.Payment](t, rec).FailureReason)
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[map[string]string](t, rec)["error"])
}
