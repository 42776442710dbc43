package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/gearshop/internal/domain/cart"
)

// PostgresCartStore keeps one cart row per owner with the lines held as
// a JSONB document. The row is replaced whole; a compare-and-swap on
// the version column gives the same conditional-replace contract as the
// DynamoDB backend.
type PostgresCartStore struct {
	db *sql.DB
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db}
}

// InitSchema creates the carts table if it does not exist.
func (s *PostgresCartStore) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS carts (
			owner_id   TEXT PRIMARY KEY,
			lines      JSONB NOT NULL DEFAULT '[]',
			version    INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create carts table: %w", err)
	}
	return nil
}

// GetCart loads the owner's cart row.
func (s *PostgresCartStore) GetCart(ctx context.Context, ownerID string) (*cart.Cart, error) {
	var linesJSON []byte
	c := &cart.Cart{OwnerID: ownerID}

	err := s.db.QueryRowContext(ctx,
		`SELECT lines, version, updated_at FROM carts WHERE owner_id = $1`,
		ownerID,
	).Scan(&linesJSON, &c.Version, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	if err := json.Unmarshal(linesJSON, &c.Lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart lines: %w", err)
	}
	return c, nil
}

// PutCart replaces the owner's row if the stored version still matches
// the version the caller read. Version 0 means the row must not exist.
func (s *PostgresCartStore) PutCart(ctx context.Context, c *cart.Cart) error {
	linesJSON, err := json.Marshal(c.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}

	now := time.Now()
	var result sql.Result
	if c.Version == 0 {
		result, err = s.db.ExecContext(ctx,
			`INSERT INTO carts (owner_id, lines, version, updated_at)
			 VALUES ($1, $2, 1, $3)
			 ON CONFLICT (owner_id) DO NOTHING`,
			c.OwnerID, linesJSON, now)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE carts
			 SET lines = $2, version = version + 1, updated_at = $3
			 WHERE owner_id = $1 AND version = $4`,
			c.OwnerID, linesJSON, now, c.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to put cart: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to put cart: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	c.Version++
	c.UpdatedAt = now
	return nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
