// Package bitacora is the append-only outcome log: one entry per person
// per processing run, recording the computed distance and whether a
// notification went out.
package bitacora

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one bitácora row. Date is the processing date, not the birth
// date; RunID groups the rows of a single run.
type Entry struct {
	RunID         uuid.UUID
	Date          time.Time
	Name          string
	DaysRemaining int
	Notified      bool
}

// Sink appends entries. Implementations never update or delete.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}
