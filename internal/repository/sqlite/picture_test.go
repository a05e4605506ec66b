package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/repository/sqlite"
)

func seedPictures(t *testing.T, db *sqlite.DB, userID int64, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		pic := &domain.Picture{
			ID:          fmt.Sprintf("pic-%d", i),
			UserID:      userID,
			DisplayName: fmt.Sprintf("photo-%d.jpg", i),
			ByteSize:    int64(100 + i),
			ContentType: "image/jpeg",
			StorageKey:  fmt.Sprintf("pictures/%d/key-%d", userID, i),
			SortOrder:   i,
		}
		if err := db.Pictures().Create(context.Background(), pic); err != nil {
			t.Fatalf("create picture %d: %v", i, err)
		}
		ids[i] = pic.ID
	}
	return ids
}

func TestPictureListOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "rin")
	ids := seedPictures(t, db, user.ID, 4)

	pics, err := db.Pictures().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(pics) != 4 {
		t.Fatalf("got %d pictures, want 4", len(pics))
	}
	for i, p := range pics {
		if p.ID != ids[i] {
			t.Errorf("position %d holds %s, want %s", i, p.ID, ids[i])
		}
	}
}

func TestPictureReorder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "rin")
	ids := seedPictures(t, db, user.ID, 3)

	reordered := []string{ids[2], ids[0], ids[1]}
	if err := db.Pictures().Reorder(ctx, user.ID, reordered); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	pics, err := db.Pictures().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	for i, p := range pics {
		if p.ID != reordered[i] {
			t.Errorf("position %d holds %s, want %s", i, p.ID, reordered[i])
		}
	}
}

func TestPictureReorderRejectsNonPermutation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "rin")
	ids := seedPictures(t, db, user.ID, 3)

	// Wrong length.
	if err := db.Pictures().Reorder(ctx, user.ID, ids[:2]); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("short list: got %v, want ErrInvalidInput", err)
	}

	// Unknown id.
	bogus := []string{ids[0], ids[1], "no-such-id"}
	if err := db.Pictures().Reorder(ctx, user.ID, bogus); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown id: got %v, want ErrInvalidInput", err)
	}

	// A failed reorder must leave the original order intact.
	pics, err := db.Pictures().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	for i, p := range pics {
		if p.ID != ids[i] {
			t.Errorf("position %d holds %s, want %s (order mutated by failed reorder)", i, p.ID, ids[i])
		}
	}
}

func TestPictureUpdatePreservesID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "rin")
	ids := seedPictures(t, db, user.ID, 1)

	pic, err := db.Pictures().GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	pic.DisplayName = "replaced.png"
	pic.ByteSize = 777
	pic.ContentType = "image/png"
	pic.StorageKey = "pictures/1/new-key"
	if err := db.Pictures().Update(ctx, pic); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := db.Pictures().GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.DisplayName != "replaced.png" || got.ByteSize != 777 || got.StorageKey != "pictures/1/new-key" {
		t.Fatalf("update lost data: %+v", got)
	}
}

func TestPictureDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "rin")
	ids := seedPictures(t, db, user.ID, 2)

	if err := db.Pictures().Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Pictures().GetByID(ctx, ids[0]); err != domain.ErrNotFound {
		t.Fatalf("deleted picture: got %v, want ErrNotFound", err)
	}
	if err := db.Pictures().Delete(ctx, ids[0]); err != domain.ErrNotFound {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}

	count, err := db.Pictures().CountByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	if err := db.Pictures().DeleteByUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	count, err = db.Pictures().CountByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountByUser after clear: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}
