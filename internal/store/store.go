package store

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the sqlx-backed persistence layer for every pharmacy table.
type Store struct {
	db     *sqlx.DB
	logger *log.Logger
	now    func() time.Time
}

func New(db *sqlx.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{db: db, logger: logger, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) rebind(q string) string {
	return s.db.Rebind(q)
}

// likePattern builds a lowercase substring pattern for LOWER(col) LIKE ?.
func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}
