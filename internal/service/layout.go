package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/karitsu/gridpager/internal/domain"
)

const assetMaxSize = 10 * 1024 * 1024 // 10MB for sticker/overlay sources

// LayoutService owns the per-user LayoutSettings snapshot and the
// sticker/overlay source images it references.
type LayoutService struct {
	settings domain.SettingsRepository
	files    domain.FileStore
}

// NewLayoutService creates a new LayoutService.
func NewLayoutService(settings domain.SettingsRepository, files domain.FileStore) *LayoutService {
	return &LayoutService{settings: settings, files: files}
}

// Get returns the user's settings, falling back to defaults for a fresh
// account.
func (s *LayoutService) Get(ctx context.Context, userID int64) (*domain.LayoutSettings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			def := domain.DefaultLayoutSettings()
			return &def, nil
		}
		return nil, err
	}
	settings.Normalize()
	return settings, nil
}

// Save normalizes and persists a settings snapshot. Out-of-range values
// are clamped, not rejected.
func (s *LayoutService) Save(ctx context.Context, userID int64, settings *domain.LayoutSettings) error {
	// The sticker and overlay source keys are owned by the asset
	// endpoints; a plain settings save must not detach them.
	current, err := s.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load current settings: %w", err)
	}
	settings.Sticker.SourceKey = current.Sticker.SourceKey
	settings.Overlay.SourceKey = current.Overlay.SourceKey

	settings.Normalize()
	if err := s.settings.Put(ctx, userID, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Asset kinds for SetAssetSource/ClearAssetSource.
const (
	AssetSticker = "sticker"
	AssetOverlay = "overlay"
)

// SetAssetSource stores a sticker or overlay source image and points the
// settings snapshot at it. The superseded source blob, if any, is
// released exactly once.
func (s *LayoutService) SetAssetSource(ctx context.Context, userID int64, kind string, data []byte) error {
	if kind != AssetSticker && kind != AssetOverlay {
		return fmt.Errorf("%w: unknown asset kind %q", domain.ErrInvalidInput, kind)
	}
	if len(data) == 0 || len(data) > assetMaxSize {
		return fmt.Errorf("%w: image is empty or exceeds the 10MB limit", domain.ErrInvalidInput)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: not a decodable image", domain.ErrInvalidInput)
	}

	settings, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	suffix, err := newID()
	if err != nil {
		return fmt.Errorf("generate storage key: %w", err)
	}
	key := fmt.Sprintf("assets/%d/%s-%s", userID, kind, suffix)
	if err := s.files.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save asset: %w", err)
	}

	oldKey := ""
	switch kind {
	case AssetSticker:
		oldKey = settings.Sticker.SourceKey
		settings.Sticker.SourceKey = key
	case AssetOverlay:
		oldKey = settings.Overlay.SourceKey
		settings.Overlay.SourceKey = key
	}

	if err := s.settings.Put(ctx, userID, settings); err != nil {
		if derr := s.files.Delete(ctx, key); derr != nil {
			slog.Warn("cleanup asset blob", "key", key, "error", derr)
		}
		return fmt.Errorf("save settings: %w", err)
	}

	if oldKey != "" {
		if err := s.files.Delete(ctx, oldKey); err != nil {
			slog.Warn("delete superseded asset", "key", oldKey, "error", err)
		}
	}
	return nil
}

// ClearAssetSource detaches and releases a sticker or overlay source.
func (s *LayoutService) ClearAssetSource(ctx context.Context, userID int64, kind string) error {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	oldKey := ""
	switch kind {
	case AssetSticker:
		oldKey = settings.Sticker.SourceKey
		settings.Sticker.SourceKey = ""
	case AssetOverlay:
		oldKey = settings.Overlay.SourceKey
		settings.Overlay.SourceKey = ""
	default:
		return fmt.Errorf("%w: unknown asset kind %q", domain.ErrInvalidInput, kind)
	}

	if err := s.settings.Put(ctx, userID, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if oldKey != "" {
		if err := s.files.Delete(ctx, oldKey); err != nil {
			slog.Warn("delete detached asset", "key", oldKey, "error", err)
		}
	}
	return nil
}

// AssetSource returns the raw bytes of the user's sticker or overlay
// source, for UI preview.
func (s *LayoutService) AssetSource(ctx context.Context, userID int64, kind string) ([]byte, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := ""
	switch kind {
	case AssetSticker:
		key = settings.Sticker.SourceKey
	case AssetOverlay:
		key = settings.Overlay.SourceKey
	default:
		return nil, fmt.Errorf("%w: unknown asset kind %q", domain.ErrInvalidInput, kind)
	}
	if key == "" {
		return nil, domain.ErrNotFound
	}
	return s.files.Get(ctx, key)
}
