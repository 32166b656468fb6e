package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrdersRepo writes straight to the Postgres database behind Supabase.
type OrdersRepo struct {
	Pool     DB
	qTimeout time.Duration
}

func NewOrdersRepo(pool *pgxpool.Pool) *OrdersRepo {
	return &OrdersRepo{
		Pool:     pool,
		qTimeout: 5 * time.Second,
	}
}

func NewOrdersRepoWith(pool DB, qTimeout time.Duration) *OrdersRepo {
	return &OrdersRepo{
		Pool:     pool,
		qTimeout: qTimeout,
	}
}

func (r *OrdersRepo) withQ(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.qTimeout)
}

func (r *OrdersRepo) Ping(ctx context.Context) error {
	ctxT, cancel := r.withQ(ctx)
	defer cancel()
	var x int
	if err := r.Pool.QueryRow(ctxT, "select 1").Scan(&x); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
