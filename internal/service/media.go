package service

import (
	"context"
	"path"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

// MaxUploadBytes bounds a single media upload.
const MaxUploadBytes = 10 << 20

var mediaFolders = map[string]bool{
	"styles":    true,
	"portfolio": true,
	"messages":  true,
	"avatars":   true,
}

type MediaService struct{ *core }

// Upload stores data in one of the known folders and returns the hosted
// asset. The upload counts against the caller's media budget.
func (s *MediaService) Upload(ctx context.Context, id *auth.Identity, data []byte, filename, folder string) (provider.Asset, error) {
	if !mediaFolders[folder] {
		return provider.Asset{}, apperr.Invalid("unknown folder %q", folder)
	}
	if len(data) == 0 || len(data) > MaxUploadBytes {
		return provider.Asset{}, apperr.Invalid("file must be between 1 byte and %d bytes", MaxUploadBytes)
	}
	if s.Media == nil {
		return provider.Asset{}, apperr.Upstream("media", errMediaUnset)
	}
	var prefix string
	if err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		prefix = c.TenantID()
		if prefix == "" {
			prefix = "accounts/" + c.ID()
		}
		return s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.MediaUpload)
	}); err != nil {
		return provider.Asset{}, err
	}
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	asset, err := s.Media.Upload(ctx, data, name, path.Join("stylehub", prefix, folder))
	if err != nil {
		return provider.Asset{}, apperr.Upstream("media", err)
	}
	return asset, nil
}
