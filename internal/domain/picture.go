package domain

import (
	"context"
	"time"
)

// Picture holds metadata about one user-imported image. The original
// encoded bytes live in the FileStore under StorageKey; a decoded bitmap
// is derived on demand and never persisted.
type Picture struct {
	ID          string // opaque hex id, stable across reorder and replace
	UserID      int64
	DisplayName string // original upload filename
	ByteSize    int64  // size of the encoded payload
	ContentType string // "image/jpeg", "image/png", "image/webp", "image/gif"
	StorageKey  string // key used to retrieve bytes from FileStore
	SortOrder   int    // position in the ordered gallery
	CreatedAt   time.Time
}

// SameUpload reports whether p and the given name/size pair look like the
// same source file. Name plus byte size is a weak identity, not a content
// hash; the import flow uses it only to skip obvious re-uploads.
func (p *Picture) SameUpload(name string, size int64) bool {
	return p.DisplayName == name && p.ByteSize == size
}

// PictureRepository handles gallery metadata persistence. The gallery
// order is the SortOrder column; ListByUser returns pictures in that
// order, which directly determines sequence numbers and grid placement.
type PictureRepository interface {
	Create(ctx context.Context, pic *Picture) error
	GetByID(ctx context.Context, id string) (*Picture, error)
	ListByUser(ctx context.Context, userID int64) ([]Picture, error)
	// Update rewrites metadata in place; used by replace, which keeps the
	// picture's id but swaps payload, name, size, and storage key.
	Update(ctx context.Context, pic *Picture) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int64) error
	// Reorder assigns SortOrder following the given id sequence, which
	// must be a permutation of the user's current gallery.
	Reorder(ctx context.Context, userID int64, ids []string) error
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// FileStore abstracts raw file byte storage. The initial implementation
// stores BLOBs in SQLite; the interface allows swapping to a filesystem
// or object store later.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context, prefix string) error
}
