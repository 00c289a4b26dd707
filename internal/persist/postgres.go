package persist

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
)

const (
	pingTimeout  = 1 * time.Second
	flushTimeout = 5 * time.Second
)

// PostgresSink mirrors the catalog into a products table. Each flush
// replaces the whole table inside one transaction, matching the file
// sink's full-overwrite contract.
type PostgresSink struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenPostgres(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return NewPostgresSink(db), nil
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresSink) Flush(ctx context.Context, items []catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (name, price, stock, description)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.Name, it.Price, it.Stock, it.Description); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresSink) Close() error { return s.db.Close() }
