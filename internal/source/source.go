// Package source lists the people whose birthdays are processed.
// Implementations read a relational table, a spreadsheet export, or a
// vCard address book and normalize rows into Person records.
package source

import (
	"context"
	"time"
)

// Person is one input row: a name, a birth date, and the contact
// addresses a notifier may use. Either contact field may be empty.
type Person struct {
	Name      string
	BirthDate time.Time
	Email     string
	Phone     string
}

// Source lists all persons from the underlying storage. Rows whose birth
// date cannot be parsed are skipped with a warning rather than failing the
// batch; the error return covers storage-level failures only.
type Source interface {
	List(ctx context.Context) ([]Person, error)
}
