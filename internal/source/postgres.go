package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tartampluch/go-cumple/internal/config"
)

// PostgresSource reads persons from the persona table.
type PostgresSource struct {
	DB *sql.DB
}

// NewPostgresSource wraps an open database handle.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{DB: db}
}

// List returns every row of the persona table. The fecha_nacimiento column
// is a DATE, so no date parsing can fail here; NULL contact columns map to
// empty strings.
func (s *PostgresSource) List(ctx context.Context) ([]Person, error) {
	rows, err := s.DB.QueryContext(ctx, config.QuerySelectPersonas)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBQuery, err)
	}
	defer rows.Close()

	var persons []Person
	for rows.Next() {
		var (
			p     Person
			birth time.Time
			email sql.NullString
			phone sql.NullString
		)
		if err := rows.Scan(&p.Name, &birth, &email, &phone); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrDBScan, err)
		}
		p.BirthDate = birth
		p.Email = email.String
		p.Phone = phone.String
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBQuery, err)
	}

	return persons, nil
}
