package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/karitsu/gridpager/internal/domain"
	"github.com/karitsu/gridpager/internal/repository/sqlite/migrations"
)

// DB wraps the SQLite handle and hands out typed repositories.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for
// use: WAL journaling, foreign key enforcement, and a single connection
// (modernc sqlite serializes writers anyway).
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all unapplied schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Users returns the user repository.
func (d *DB) Users() domain.UserRepository {
	return &userRepo{db: d.SqlDB}
}

// Pictures returns the gallery metadata repository.
func (d *DB) Pictures() domain.PictureRepository {
	return &pictureRepo{db: d.SqlDB}
}

// Settings returns the layout settings repository.
func (d *DB) Settings() domain.SettingsRepository {
	return &settingsRepo{db: d.SqlDB}
}

// FileStore returns the BLOB file store.
func (d *DB) FileStore() domain.FileStore {
	return &fileStore{db: d.SqlDB}
}
