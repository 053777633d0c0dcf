// Package items implements the item CRUD service: a thin HTTP surface over
// a SQLite-backed store. Each request is one auto-committed statement; there
// is no soft delete and no versioning.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
)

// ErrItemNotFound reports that no item with the requested id exists.
var ErrItemNotFound = errors.New("item not found")

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Item is the stored record. Description and Price are optional and render
// as JSON null when absent.
type Item struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
}

// ItemPatch carries a partial update: nil fields are left unchanged.
type ItemPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
}

// Store persists items in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the item database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open item database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to item database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		price INTEGER
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create items schema: %w", err)
	}

	logger.Info("item store opened", "path", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new item and returns it with the store-assigned id.
func (s *Store) Create(ctx context.Context, title string, description *string, price *int64) (Item, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO items (title, description, price) VALUES (?, ?, ?)",
		title, description, price)
	if err != nil {
		return Item{}, fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Item{}, fmt.Errorf("failed to read new item id: %w", err)
	}

	return Item{ID: id, Title: title, Description: description, Price: price}, nil
}

// List returns items in store order, skipping skip records and returning at
// most limit. An empty store yields an empty slice.
func (s *Store) List(ctx context.Context, skip, limit int) ([]Item, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, description, price FROM items ORDER BY id LIMIT ? OFFSET ?",
		limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// Get returns the item with the given id.
func (s *Store) Get(ctx context.Context, id int64) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, description, price FROM items WHERE id = ?", id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// Update applies a partial update: only non-nil patch fields overwrite the
// stored record. Returns the updated item.
func (s *Store) Update(ctx context.Context, id int64, patch ItemPatch) (Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT id, title, description, price FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	if err != nil {
		return Item{}, err
	}

	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = patch.Description
	}
	if patch.Price != nil {
		item.Price = patch.Price
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE items SET title = ?, description = ?, price = ? WHERE id = ?",
		item.Title, item.Description, item.Price, item.ID)
	if err != nil {
		return Item{}, fmt.Errorf("failed to update item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("failed to commit update: %w", err)
	}
	return item, nil
}

// Delete removes the item with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var item Item
	var description sql.NullString
	var price sql.NullInt64

	if err := row.Scan(&item.ID, &item.Title, &description, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("failed to scan item: %w", err)
	}

	if description.Valid {
		item.Description = &description.String
	}
	if price.Valid {
		item.Price = &price.Int64
	}
	return item, nil
}
