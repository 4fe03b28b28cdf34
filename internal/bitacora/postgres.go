package bitacora

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tartampluch/go-cumple/internal/config"
)

// PostgresSink appends entries to the bitacora table.
type PostgresSink struct {
	DB *sql.DB
}

// NewPostgresSink wraps an open database handle.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{DB: db}
}

// Append inserts one row. No transaction is needed for a single insert.
func (s *PostgresSink) Append(ctx context.Context, e Entry) error {
	_, err := s.DB.ExecContext(ctx, config.QueryInsertBitacora,
		e.RunID, e.Date, e.Name, e.DaysRemaining, e.Notified)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBInsert, err)
	}
	return nil
}
