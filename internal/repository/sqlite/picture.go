package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/karitsu/gridpager/internal/domain"
)

// pictureRepo implements domain.PictureRepository using SQLite.
type pictureRepo struct {
	db *sql.DB
}

const pictureColumns = "id, user_id, display_name, byte_size, content_type, storage_key, sort_order, created_at"

func (r *pictureRepo) Create(ctx context.Context, pic *domain.Picture) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pictures (id, user_id, display_name, byte_size, content_type, storage_key, sort_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pic.ID, pic.UserID, pic.DisplayName, pic.ByteSize,
		pic.ContentType, pic.StorageKey, pic.SortOrder, now,
	)
	if err != nil {
		return fmt.Errorf("insert picture: %w", err)
	}
	pic.CreatedAt = now
	return nil
}

func (r *pictureRepo) GetByID(ctx context.Context, id string) (*domain.Picture, error) {
	pic := &domain.Picture{}
	err := r.db.QueryRowContext(ctx,
		"SELECT "+pictureColumns+" FROM pictures WHERE id = ?", id,
	).Scan(&pic.ID, &pic.UserID, &pic.DisplayName, &pic.ByteSize,
		&pic.ContentType, &pic.StorageKey, &pic.SortOrder, &pic.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get picture: %w", err)
	}
	return pic, nil
}

func (r *pictureRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Picture, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+pictureColumns+" FROM pictures WHERE user_id = ? ORDER BY sort_order", userID)
	if err != nil {
		return nil, fmt.Errorf("list pictures: %w", err)
	}
	defer rows.Close()

	var pics []domain.Picture
	for rows.Next() {
		var pic domain.Picture
		if err := rows.Scan(&pic.ID, &pic.UserID, &pic.DisplayName, &pic.ByteSize,
			&pic.ContentType, &pic.StorageKey, &pic.SortOrder, &pic.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan picture: %w", err)
		}
		pics = append(pics, pic)
	}
	return pics, rows.Err()
}

func (r *pictureRepo) Update(ctx context.Context, pic *domain.Picture) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE pictures SET display_name = ?, byte_size = ?, content_type = ?, storage_key = ?, sort_order = ?
		 WHERE id = ?`,
		pic.DisplayName, pic.ByteSize, pic.ContentType, pic.StorageKey, pic.SortOrder, pic.ID,
	)
	if err != nil {
		return fmt.Errorf("update picture: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pictureRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM pictures WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete picture: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pictureRepo) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM pictures WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete pictures by user: %w", err)
	}
	return nil
}

// Reorder rewrites sort_order to follow the given id sequence. The ids
// must be a permutation of the user's gallery; anything else aborts the
// transaction.
func (r *pictureRepo) Reorder(ctx context.Context, userID int64, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pictures WHERE user_id = ?", userID,
	).Scan(&count); err != nil {
		return fmt.Errorf("count pictures: %w", err)
	}
	if count != len(ids) {
		return fmt.Errorf("%w: reorder lists %d ids, gallery holds %d", domain.ErrInvalidInput, len(ids), count)
	}

	for order, id := range ids {
		result, err := tx.ExecContext(ctx,
			"UPDATE pictures SET sort_order = ? WHERE id = ? AND user_id = ?",
			order, id, userID,
		)
		if err != nil {
			return fmt.Errorf("update sort order: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: unknown picture id %s", domain.ErrInvalidInput, id)
		}
	}

	return tx.Commit()
}

func (r *pictureRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pictures WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pictures: %w", err)
	}
	return count, nil
}
