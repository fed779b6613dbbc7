package provider

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CloudinaryStorage uploads images with signed requests.
type CloudinaryStorage struct {
	http      *resty.Client
	apiKey    string
	apiSecret string
	now       func() time.Time
	logger    *zap.Logger
}

func NewCloudinaryStorage(baseURL, cloudName, apiKey, apiSecret string, logger *zap.Logger) *CloudinaryStorage {
	if baseURL == "" {
		baseURL = "https://api.cloudinary.com/v1_1"
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/") + "/" + cloudName).
		SetTimeout(60 * time.Second)
	return &CloudinaryStorage{http: client, apiKey: apiKey, apiSecret: apiSecret, now: time.Now, logger: logger}
}

type cloudinaryUpload struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Result    string `json:"result"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// sign computes the request signature: the sorted key=value pairs joined
// by '&' with the api secret appended, hashed with SHA-1.
func (s *CloudinaryStorage) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}

func (s *CloudinaryStorage) signed(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(s.now().Unix(), 10)
	form := map[string]string{"api_key": s.apiKey, "signature": s.sign(params)}
	for k, v := range params {
		form[k] = v
	}
	return form
}

func (s *CloudinaryStorage) Upload(ctx context.Context, data []byte, filename, folder string) (Asset, error) {
	var out cloudinaryUpload
	resp, err := s.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(s.signed(map[string]string{"folder": folder})).
		SetResult(&out).
		SetError(&out).
		Post("/image/upload")
	if err != nil {
		s.logger.Error("cloudinary upload failed", zap.Error(err), zap.String("folder", folder))
		return Asset{}, fmt.Errorf("cloudinary: %w", err)
	}
	if resp.IsError() {
		msg := ""
		if out.Error != nil {
			msg = out.Error.Message
		}
		return Asset{}, fmt.Errorf("cloudinary: upload status %d: %s", resp.StatusCode(), msg)
	}
	return Asset{PublicID: out.PublicID, URL: out.SecureURL, Width: out.Width, Height: out.Height}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	var out cloudinaryUpload
	resp, err := s.http.R().
		SetContext(ctx).
		SetFormData(s.signed(map[string]string{"public_id": publicID})).
		SetResult(&out).
		SetError(&out).
		Post("/image/destroy")
	if err != nil {
		return fmt.Errorf("cloudinary: %w", err)
	}
	if resp.IsError() || (out.Result != "ok" && out.Result != "not found") {
		return fmt.Errorf("cloudinary: destroy status %d: %s", resp.StatusCode(), out.Result)
	}
	return nil
}
