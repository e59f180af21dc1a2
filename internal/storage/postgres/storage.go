package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/travelpay/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Purchases returns the purchase repository.
func (s *Storage) Purchases() repository.PurchaseRepository {
	return &purchaseRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS purchase_order_seq`,
		`CREATE SEQUENCE IF NOT EXISTS purchase_receipt_seq`,
		`CREATE TABLE IF NOT EXISTS purchases (
            id TEXT PRIMARY KEY,
            internal_order_id TEXT UNIQUE NOT NULL DEFAULT ('TRV-' || LPAD(nextval('purchase_order_seq')::text, 8, '0')),
            receipt_number TEXT NOT NULL DEFAULT '',
            full_name TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            user_id TEXT NOT NULL DEFAULT '',
            package_id TEXT NOT NULL DEFAULT '',
            package_slug TEXT NOT NULL DEFAULT '',
            package_title TEXT NOT NULL DEFAULT '',
            destination TEXT NOT NULL DEFAULT '',
            travel_date TEXT NOT NULL DEFAULT '',
            checkout_type TEXT NOT NULL DEFAULT 'package',
            customer_note TEXT NOT NULL DEFAULT '',
            travellers INTEGER NOT NULL DEFAULT 1 CHECK (travellers >= 1),
            unit_price BIGINT NOT NULL,
            unit_label TEXT NOT NULL DEFAULT '',
            amount BIGINT NOT NULL CHECK (amount > 0),
            currency TEXT NOT NULL,
            razorpay_order_id TEXT UNIQUE NOT NULL,
            razorpay_payment_id TEXT NOT NULL DEFAULT '',
            razorpay_signature TEXT NOT NULL DEFAULT '',
            payment_method TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            failure_reason TEXT NOT NULL DEFAULT '',
            failure_code TEXT NOT NULL DEFAULT '',
            failure_source TEXT NOT NULL DEFAULT '',
            failure_step TEXT NOT NULL DEFAULT '',
            refund_id TEXT NOT NULL DEFAULT '',
            refunded_amount BIGINT NOT NULL DEFAULT 0,
            refund_notes TEXT NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            paid_at TIMESTAMPTZ,
            refunded_at TIMESTAMPTZ,
            receipt_sent_at TIMESTAMPTZ,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS purchase_status_history (
            id BIGSERIAL PRIMARY KEY,
            purchase_id TEXT NOT NULL REFERENCES purchases(id),
            from_status TEXT NOT NULL DEFAULT '',
            to_status TEXT NOT NULL,
            payment_id TEXT NOT NULL DEFAULT '',
            detail TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_payment ON purchases(razorpay_payment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_history_purchase ON purchase_status_history(purchase_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
