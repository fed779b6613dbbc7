package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResendSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		var body resendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"ada@example.com"}, body.To)
		assert.Equal(t, "StyleHub <no-reply@stylehub.app>", body.From)
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_key", "StyleHub <no-reply@stylehub.app>", zap.NewNop())
	id, err := m.Send(context.Background(), "ada@example.com", "Hi", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, "msg_1", id)
}

func TestResendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "k", "x", zap.NewNop())
	_, err := m.Send(context.Background(), "a@b.c", "s", "h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from")
}

func TestFlutterwaveInitializeAndVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/payments":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "TXN-1", body["tx_ref"])
			assert.Equal(t, "5000", body["amount"])
			_, _ = w.Write([]byte(`{"status":"success","data":{"link":"https://checkout/abc"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/transactions/99/verify":
			_, _ = w.Write([]byte(`{"status":"success","data":{"id":99,"tx_ref":"TXN-1","amount":5000,"currency":"NGN","status":"successful","payment_type":"card"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := NewFlutterwaveGateway(srv.URL, "sk", zap.NewNop())
	res, err := g.Initialize(context.Background(), InitRequest{TxRef: "TXN-1", Amount: decimal.NewFromInt(5000), Currency: "NGN"})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout/abc", res.RedirectURL)
	assert.Equal(t, "TXN-1", res.Reference)

	v, err := g.Verify(context.Background(), "99")
	require.NoError(t, err)
	assert.Equal(t, "successful", v.Status)
	assert.Equal(t, "99", v.TransactionID)
	assert.True(t, v.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "card", v.PaymentType)
}

func TestFlutterwaveVerifyFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","message":"No transaction was found"}`))
	}))
	defer srv.Close()

	_, err := NewFlutterwaveGateway(srv.URL, "sk", zap.NewNop()).Verify(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No transaction was found")
}

func TestVerifyWebhookHash(t *testing.T) {
	assert.True(t, VerifyWebhookHash("s3cret", "s3cret"))
	assert.False(t, VerifyWebhookHash("s3cre", "s3cret"))
	assert.False(t, VerifyWebhookHash("", ""))
}

func TestCloudinaryUploadSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "styles", r.FormValue("folder"))
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.Equal(t, "1700000000", r.FormValue("timestamp"))
		assert.Len(t, r.FormValue("signature"), 40)
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		b, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(b))
		_, _ = w.Write([]byte(`{"public_id":"styles/abc","secure_url":"https://cdn/abc.png","width":640,"height":480}`))
	}))
	defer srv.Close()

	s := NewCloudinaryStorage(srv.URL, "demo", "key", "secret", zap.NewNop())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	a, err := s.Upload(context.Background(), []byte("png-bytes"), "a.png", "styles")
	require.NoError(t, err)
	assert.Equal(t, Asset{PublicID: "styles/abc", URL: "https://cdn/abc.png", Width: 640, Height: 480}, a)
}

func TestCloudinarySignature(t *testing.T) {
	s := &CloudinaryStorage{apiSecret: "abcd"}
	// sha1("folder=x&timestamp=1abcd")
	got := s.sign(map[string]string{"timestamp": "1", "folder": "x"})
	assert.Len(t, got, 40)
	assert.Equal(t, got, s.sign(map[string]string{"folder": "x", "timestamp": "1"}))
}

func TestRenderTemplates(t *testing.T) {
	subject, html, err := RenderInvitation(InvitationEmail{TenantName: "Ada Tailors", InviterName: "Ada", Role: "worker", AcceptURL: "https://app/invite/tok", ExpiresOn: "Jan 2"})
	require.NoError(t, err)
	assert.Equal(t, "You're invited to join Ada Tailors", subject)
	assert.True(t, strings.Contains(html, "https://app/invite/tok"))

	subject, html, err = RenderOrderUpdate(OrderEmail{CustomerName: "Bo", OrderNumber: "ORD-1", Status: "in_progress", Total: "5000", Currency: "NGN"})
	require.NoError(t, err)
	assert.Equal(t, "Order ORD-1 is in progress", subject)
	assert.Contains(t, html, "<strong>in_progress</strong>")

	subject, _, err = RenderOrderUpdate(OrderEmail{OrderNumber: "ORD-2", Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, "Order ORD-2 received", subject)
}
