package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ResendMailer sends mail through the Resend HTTP API.
type ResendMailer struct {
	http   *resty.Client
	from   string
	logger *zap.Logger
}

func NewResendMailer(baseURL, apiKey, from string, logger *zap.Logger) *ResendMailer {
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &ResendMailer{http: client, from: from, logger: logger}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	var out resendResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(resendRequest{From: m.from, To: []string{to}, Subject: subject, HTML: html}).
		SetResult(&out).
		SetError(&out).
		Post("/emails")
	if err != nil {
		m.logger.Error("resend request failed", zap.Error(err))
		return "", fmt.Errorf("resend: %w", err)
	}
	if resp.IsError() {
		m.logger.Error("resend rejected message", zap.Int("status_code", resp.StatusCode()), zap.String("msg", out.Message))
		return "", fmt.Errorf("resend: status %d: %s", resp.StatusCode(), out.Message)
	}
	return out.ID, nil
}
