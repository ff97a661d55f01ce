package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgPingTimeout  = 1 * time.Second
	pgQueryTimeout = 3 * time.Second
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cart_slots (
	key        text        PRIMARY KEY,
	value      bytea       NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// Postgres keeps slots in the cart_slots table. Migrate creates it.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the slot table when it does not exist yet. It is safe to run
// on every start.
func (s *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pgQueryTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate cart_slots: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, pgQueryTimeout)
	defer cancel()

	var v []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM cart_slots WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmpty
	}
	return v, err
}

func (s *Postgres) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, pgQueryTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO cart_slots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	return err
}

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pgPingTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}
