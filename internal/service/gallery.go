package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"

	"github.com/nfnt/resize"

	"github.com/karitsu/gridpager/internal/domain"
)

const (
	maxImageSize  = 20 * 1024 * 1024 // 20MB per file
	maxGallery    = 500
	thumbnailEdge = 320
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Upload is one incoming file: its original name and encoded bytes.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImportReport summarizes one batch import.
type ImportReport struct {
	Added      []domain.Picture
	Duplicates int // skipped: same name and size as an existing picture
	Rejected   int // skipped: not an accepted image type or too large
}

// GalleryService owns the ordered gallery: imports, ordering, payload
// access, and thumbnails.
type GalleryService struct {
	pictures domain.PictureRepository
	files    domain.FileStore
}

// NewGalleryService creates a new GalleryService.
func NewGalleryService(pictures domain.PictureRepository, files domain.FileStore) *GalleryService {
	return &GalleryService{pictures: pictures, files: files}
}

// Import appends uploads to the end of the user's gallery in the given
// order. Files whose name and byte size match an existing picture are
// skipped (weak duplicate identity, deliberately not a content hash), as
// are files that are not acceptable images. One bad file never fails the
// batch.
func (s *GalleryService) Import(ctx context.Context, userID int64, uploads []Upload) (*ImportReport, error) {
	existing, err := s.pictures.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	if len(existing)+len(uploads) > maxGallery {
		return nil, fmt.Errorf("%w: gallery is limited to %d pictures", domain.ErrInvalidInput, maxGallery)
	}

	report := &ImportReport{}
	nextOrder := len(existing)

	for _, up := range uploads {
		if len(up.Data) == 0 || len(up.Data) > maxImageSize || !allowedImageTypes[up.ContentType] {
			report.Rejected++
			continue
		}
		if isDuplicate(existing, report.Added, up) {
			report.Duplicates++
			continue
		}

		id, err := newID()
		if err != nil {
			return report, fmt.Errorf("generate picture id: %w", err)
		}
		key := storageKey(userID, id)

		if err := s.files.Save(ctx, key, up.Data); err != nil {
			return report, fmt.Errorf("save payload: %w", err)
		}

		pic := &domain.Picture{
			ID:          id,
			UserID:      userID,
			DisplayName: up.Filename,
			ByteSize:    int64(len(up.Data)),
			ContentType: up.ContentType,
			StorageKey:  key,
			SortOrder:   nextOrder,
		}
		if err := s.pictures.Create(ctx, pic); err != nil {
			// Best-effort cleanup of the stored payload.
			if derr := s.files.Delete(ctx, key); derr != nil {
				slog.Warn("cleanup orphaned payload", "key", key, "error", derr)
			}
			return report, fmt.Errorf("create picture record: %w", err)
		}

		report.Added = append(report.Added, *pic)
		nextOrder++
	}

	return report, nil
}

// List returns the user's gallery in display order.
func (s *GalleryService) List(ctx context.Context, userID int64) ([]domain.Picture, error) {
	return s.pictures.ListByUser(ctx, userID)
}

// GetFile returns the original payload and content type after an
// ownership check.
func (s *GalleryService) GetFile(ctx context.Context, userID int64, id string) ([]byte, string, error) {
	pic, err := s.ownedPicture(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.files.Get(ctx, pic.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("get payload: %w", err)
	}
	return data, pic.ContentType, nil
}

// Thumbnail returns a small JPEG preview of the picture for the gallery
// UI. Thumbnails are derived on demand and never persisted.
func (s *GalleryService) Thumbnail(ctx context.Context, userID int64, id string) ([]byte, error) {
	data, _, err := s.GetFile(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode picture: %w", err)
	}

	thumb := resize.Thumbnail(thumbnailEdge, thumbnailEdge, img, resize.Bilinear)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Replace swaps a picture's payload and metadata while keeping its id
// and gallery position. The superseded payload is released exactly once.
func (s *GalleryService) Replace(ctx context.Context, userID int64, id string, up Upload) (*domain.Picture, error) {
	if len(up.Data) == 0 || len(up.Data) > maxImageSize {
		return nil, fmt.Errorf("%w: image is empty or exceeds the 20MB limit", domain.ErrInvalidInput)
	}
	if !allowedImageTypes[up.ContentType] {
		return nil, fmt.Errorf("%w: only JPEG, PNG, WebP, and GIF images are accepted", domain.ErrInvalidInput)
	}

	pic, err := s.ownedPicture(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	oldKey := pic.StorageKey

	suffix, err := newID()
	if err != nil {
		return nil, fmt.Errorf("generate storage key: %w", err)
	}
	newKey := picturePrefix(userID) + suffix
	if err := s.files.Save(ctx, newKey, up.Data); err != nil {
		return nil, fmt.Errorf("save replacement payload: %w", err)
	}

	pic.DisplayName = up.Filename
	pic.ByteSize = int64(len(up.Data))
	pic.ContentType = up.ContentType
	pic.StorageKey = newKey
	if err := s.pictures.Update(ctx, pic); err != nil {
		if derr := s.files.Delete(ctx, newKey); derr != nil {
			slog.Warn("cleanup replacement payload", "key", newKey, "error", derr)
		}
		return nil, fmt.Errorf("update picture record: %w", err)
	}

	// The old payload is now unreferenced; a failed delete only leaks a
	// blob, so it must not undo the replace.
	if err := s.files.Delete(ctx, oldKey); err != nil {
		slog.Warn("delete superseded payload", "key", oldKey, "error", err)
	}
	return pic, nil
}

// Delete removes a picture and its stored payload.
func (s *GalleryService) Delete(ctx context.Context, userID int64, id string) error {
	pic, err := s.ownedPicture(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.pictures.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete picture record: %w", err)
	}
	if err := s.files.Delete(ctx, pic.StorageKey); err != nil {
		slog.Warn("delete payload", "key", pic.StorageKey, "error", err)
	}
	return nil
}

// Clear empties the user's gallery and its payloads.
func (s *GalleryService) Clear(ctx context.Context, userID int64) error {
	if err := s.pictures.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear gallery: %w", err)
	}
	if err := s.files.DeleteAll(ctx, picturePrefix(userID)); err != nil {
		slog.Warn("clear payloads", "user", userID, "error", err)
	}
	return nil
}

// Reorder applies a full permutation of the user's gallery.
func (s *GalleryService) Reorder(ctx context.Context, userID int64, ids []string) error {
	return s.pictures.Reorder(ctx, userID, ids)
}

func (s *GalleryService) ownedPicture(ctx context.Context, userID int64, id string) (*domain.Picture, error) {
	pic, err := s.pictures.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pic.UserID != userID {
		// Hide other users' pictures entirely.
		return nil, domain.ErrNotFound
	}
	return pic, nil
}

func isDuplicate(existing, added []domain.Picture, up Upload) bool {
	size := int64(len(up.Data))
	for i := range existing {
		if existing[i].SameUpload(up.Filename, size) {
			return true
		}
	}
	for i := range added {
		if added[i].SameUpload(up.Filename, size) {
			return true
		}
	}
	return false
}

func newID() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func storageKey(userID int64, id string) string {
	return fmt.Sprintf("%s%s", picturePrefix(userID), id)
}

func picturePrefix(userID int64) string {
	return fmt.Sprintf("pictures/%d/", userID)
}
