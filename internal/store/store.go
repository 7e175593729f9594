// Package store provides focused, single-concern data access stores
// for labelr datasets and samples.
//
// Each store owns one domain and embeds shared helpers (Pool, logger) via
// the Base struct. Stores never import each other; shared logic lives in
// this file or in dedicated helper files.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// validID reports whether id can be a primary key. Ids are UUIDs; anything
// else cannot match a row, so callers answer not found without a query.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
