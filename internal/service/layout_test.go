package service_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/repository/sqlite"
	"github.com/karitsu/gridpager/internal/service"
)

func newTestLayoutService(t *testing.T) (*service.LayoutService, *sqlite.DB, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	user := newTestUser(t, db, "layout")
	return service.NewLayoutService(db.Settings(), db.FileStore()), db, user
}

func TestLayoutService_Get_DefaultsForFreshUser(t *testing.T) {
	layout, _, user := newTestLayoutService(t)

	settings, err := layout.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	def := domain.DefaultLayoutSettings()
	if settings.Columns != def.Columns {
		t.Fatalf("expected default columns %d, got %d", def.Columns, settings.Columns)
	}
	if settings.ExportQuality != def.ExportQuality {
		t.Fatalf("expected default quality %d, got %d", def.ExportQuality, settings.ExportQuality)
	}
	if !settings.Numbering.Enabled {
		t.Fatal("expected numbering enabled by default")
	}
}

func TestLayoutService_Save_ClampsOutOfRange(t *testing.T) {
	layout, _, user := newTestLayoutService(t)
	ctx := context.Background()

	settings := domain.DefaultLayoutSettings()
	settings.Columns = -3
	settings.ExportQuality = 0
	settings.GapPixels = -5
	if err := layout.Save(ctx, user.ID, &settings); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := layout.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Columns < 1 {
		t.Fatalf("expected columns clamped to at least 1, got %d", got.Columns)
	}
	if got.ExportQuality < 1 {
		t.Fatalf("expected quality clamped to at least 1, got %d", got.ExportQuality)
	}
	if got.GapPixels < 0 {
		t.Fatalf("expected gap clamped to at least 0, got %d", got.GapPixels)
	}
}

func TestLayoutService_Save_PreservesAssetSources(t *testing.T) {
	layout, _, user := newTestLayoutService(t)
	ctx := context.Background()

	data := pngBytes(t, 8, 8, color.RGBA{G: 200, A: 255})
	if err := layout.SetAssetSource(ctx, user.ID, service.AssetSticker, data); err != nil {
		t.Fatalf("SetAssetSource: %v", err)
	}

	// A plain settings save carries no source keys; the stored ones must
	// survive it.
	settings := domain.DefaultLayoutSettings()
	settings.Columns = 4
	if err := layout.Save(ctx, user.ID, &settings); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := layout.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Columns != 4 {
		t.Fatalf("expected columns 4, got %d", got.Columns)
	}
	if got.Sticker.SourceKey == "" {
		t.Fatal("expected sticker source to survive a settings save")
	}
}

func TestLayoutService_SetAssetSource_ReplacesExactlyOnce(t *testing.T) {
	layout, db, user := newTestLayoutService(t)
	ctx := context.Background()

	first := pngBytes(t, 8, 8, color.RGBA{R: 200, A: 255})
	if err := layout.SetAssetSource(ctx, user.ID, service.AssetOverlay, first); err != nil {
		t.Fatalf("first SetAssetSource: %v", err)
	}
	settings, err := layout.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	firstKey := settings.Overlay.SourceKey

	second := pngBytes(t, 8, 8, color.RGBA{B: 200, A: 255})
	if err := layout.SetAssetSource(ctx, user.ID, service.AssetOverlay, second); err != nil {
		t.Fatalf("second SetAssetSource: %v", err)
	}

	if _, err := db.FileStore().Get(ctx, firstKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected superseded source deleted, got %v", err)
	}

	got, err := layout.AssetSource(ctx, user.ID, service.AssetOverlay)
	if err != nil {
		t.Fatalf("AssetSource: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Fatal("expected the second source bytes")
	}
}

func TestLayoutService_SetAssetSource_RejectsBadInput(t *testing.T) {
	layout, _, user := newTestLayoutService(t)
	ctx := context.Background()

	if err := layout.SetAssetSource(ctx, user.ID, "banner", pngBytes(t, 8, 8, color.White)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
	if err := layout.SetAssetSource(ctx, user.ID, service.AssetSticker, []byte("not an image")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for junk bytes, got %v", err)
	}
}

func TestLayoutService_ClearAssetSource(t *testing.T) {
	layout, db, user := newTestLayoutService(t)
	ctx := context.Background()

	if err := layout.SetAssetSource(ctx, user.ID, service.AssetSticker, pngBytes(t, 8, 8, color.White)); err != nil {
		t.Fatalf("SetAssetSource: %v", err)
	}
	settings, err := layout.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	key := settings.Sticker.SourceKey

	if err := layout.ClearAssetSource(ctx, user.ID, service.AssetSticker); err != nil {
		t.Fatalf("ClearAssetSource: %v", err)
	}

	settings, err = layout.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.Sticker.SourceKey != "" {
		t.Fatalf("expected sticker source detached, got %q", settings.Sticker.SourceKey)
	}
	if _, err := db.FileStore().Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected detached source deleted, got %v", err)
	}
	if _, err := layout.AssetSource(ctx, user.ID, service.AssetSticker); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
