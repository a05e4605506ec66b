package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/repository/sqlite"
	"github.com/karitsu/gridpager/internal/service"
)

func newTestUser(t *testing.T, db *sqlite.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, PasswordHash: "x"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func newTestGalleryService(t *testing.T) (*service.GalleryService, *sqlite.DB, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	user := newTestUser(t, db, "gallery")
	return service.NewGalleryService(db.Pictures(), db.FileStore()), db, user
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngUpload(t *testing.T, name string, w, h int) service.Upload {
	t.Helper()
	return service.Upload{
		Filename:    name,
		ContentType: "image/png",
		Data:        pngBytes(t, w, h, color.RGBA{R: 200, G: 40, B: 40, A: 255}),
	}
}

func TestGalleryService_Import_Order(t *testing.T) {
	gallery, _, user := newTestGalleryService(t)
	ctx := context.Background()

	report, err := gallery.Import(ctx, user.ID, []service.Upload{
		pngUpload(t, "a.png", 10, 10),
		pngUpload(t, "b.png", 12, 12),
		pngUpload(t, "c.png", 14, 14),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(report.Added) != 3 {
		t.Fatalf("expected 3 added, got %d", len(report.Added))
	}

	pics, err := gallery.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a.png", "b.png", "c.png"}
	for i, name := range want {
		if pics[i].DisplayName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, pics[i].DisplayName)
		}
		if pics[i].SortOrder != i {
			t.Fatalf("position %d: expected sort order %d, got %d", i, i, pics[i].SortOrder)
		}
	}
}

func TestGalleryService_Import_SkipsDuplicatesAndRejects(t *testing.T) {
	gallery, _, user := newTestGalleryService(t)
	ctx := context.Background()

	first := pngUpload(t, "same.png", 10, 10)
	if _, err := gallery.Import(ctx, user.ID, []service.Upload{first}); err != nil {
		t.Fatalf("Import: %v", err)
	}

	report, err := gallery.Import(ctx, user.ID, []service.Upload{
		first, // same name and size as an existing picture
		{Filename: "doc.txt", ContentType: "text/plain", Data: []byte("hello")},
		pngUpload(t, "fresh.png", 16, 16),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Duplicates != 1 {
		t.Fatalf("expected 1 duplicate, got %d", report.Duplicates)
	}
	if report.Rejected != 1 {
		t.Fatalf("expected 1 rejected, got %d", report.Rejected)
	}
	if len(report.Added) != 1 || report.Added[0].DisplayName != "fresh.png" {
		t.Fatalf("expected only fresh.png added, got %+v", report.Added)
	}
}

func TestGalleryService_Import_DuplicateWithinBatch(t *testing.T) {
	gallery, _, user := newTestGalleryService(t)

	up := pngUpload(t, "twice.png", 10, 10)
	report, err := gallery.Import(context.Background(), user.ID, []service.Upload{up, up})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(report.Added) != 1 || report.Duplicates != 1 {
		t.Fatalf("expected 1 added and 1 duplicate, got %d/%d", len(report.Added), report.Duplicates)
	}
}

func TestGalleryService_GetFile_OwnershipEnforced(t *testing.T) {
	gallery, db, user := newTestGalleryService(t)
	ctx := context.Background()

	report, err := gallery.Import(ctx, user.ID, []service.Upload{pngUpload(t, "mine.png", 10, 10)})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	id := report.Added[0].ID

	data, contentType, err := gallery.GetFile(ctx, user.ID, id)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if contentType != "image/png" || len(data) == 0 {
		t.Fatalf("unexpected payload: type=%s len=%d", contentType, len(data))
	}

	other := newTestUser(t, db, "intruder")
	if _, _, err := gallery.GetFile(ctx, other.ID, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestGalleryService_Thumbnail(t *testing.T) {
	gallery, _, user := newTestGalleryService(t)
	ctx := context.Background()

	report, err := gallery.Import(ctx, user.ID, []service.Upload{pngUpload(t, "big.png", 800, 600)})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	thumb, err := gallery.Thumbnail(ctx, user.ID, report.Added[0].ID)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg thumbnail, got %s", format)
	}
	if cfg.Width > 320 || cfg.Height > 320 {
		t.Fatalf("thumbnail too large: %dx%d", cfg.Width, cfg.Height)
	}
}

func TestGalleryService_Replace_KeepsIDAndOrder(t *testing.T) {
	gallery, db, user := newTestGalleryService(t)
	ctx := context.Background()

	report, err := gallery.Import(ctx, user.ID, []service.Upload{
		pngUpload(t, "a.png", 10, 10),
		pngUpload(t, "b.png", 10, 10),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	target := report.Added[0]

	updated, err := gallery.Replace(ctx, user.ID, target.ID, pngUpload(t, "a2.png", 20, 20))
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if updated.ID != target.ID {
		t.Fatalf("expected id %s preserved, got %s", target.ID, updated.ID)
	}
	if updated.SortOrder != 0 {
		t.Fatalf("expected sort order 0 preserved, got %d", updated.SortOrder)
	}
	if updated.DisplayName != "a2.png" {
		t.Fatalf("expected display name a2.png, got %s", updated.DisplayName)
	}

	// The superseded payload is gone, the new one is readable.
	if _, err := db.FileStore().Get(ctx, target.StorageKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected old payload deleted, got %v", err)
	}
	if _, _, err := gallery.GetFile(ctx, user.ID, target.ID); err != nil {
		t.Fatalf("GetFile after replace: %v", err)
	}
}

func TestGalleryService_DeleteAndClear(t *testing.T) {
	gallery, db, user := newTestGalleryService(t)
	ctx := context.Background()

	report, err := gallery.Import(ctx, user.ID, []service.Upload{
		pngUpload(t, "a.png", 10, 10),
		pngUpload(t, "b.png", 12, 12),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if err := gallery.Delete(ctx, user.ID, report.Added[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := gallery.Delete(ctx, user.ID, report.Added[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}

	if err := gallery.Clear(ctx, user.ID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	pics, err := gallery.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pics) != 0 {
		t.Fatalf("expected empty gallery, got %d pictures", len(pics))
	}
	if _, err := db.FileStore().Get(ctx, report.Added[1].StorageKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected payloads cleared, got %v", err)
	}
}

func TestGalleryService_Reorder(t *testing.T) {
	gallery, _, user := newTestGalleryService(t)
	ctx := context.Background()

	var uploads []service.Upload
	for i := 0; i < 3; i++ {
		uploads = append(uploads, pngUpload(t, fmt.Sprintf("p%d.png", i), 10+i, 10+i))
	}
	report, err := gallery.Import(ctx, user.ID, uploads)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	ids := []string{report.Added[2].ID, report.Added[0].ID, report.Added[1].ID}
	if err := gallery.Reorder(ctx, user.ID, ids); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	pics, err := gallery.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i, id := range ids {
		if pics[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, pics[i].ID)
		}
	}

	// A partial list is not a permutation.
	err = gallery.Reorder(ctx, user.ID, ids[:2])
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
