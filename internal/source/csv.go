package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tartampluch/go-cumple/internal/birthday"
	"github.com/tartampluch/go-cumple/internal/config"
)

// CSVSource reads persons from a spreadsheet export with the column layout
// nombre, fecha_nacimiento (DD/MM/YYYY), correo, telefono. A header row is
// detected by its unparseable date column and skipped.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a source for the given file path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// List parses the file. Rows with an invalid birth date are logged and
// skipped so one bad cell does not fail the batch; only I/O and CSV
// structure errors abort.
func (s *CSVSource) List(ctx context.Context) ([]Person, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return s.parse(ctx, f)
}

func (s *CSVSource) parse(ctx context.Context, r io.Reader) ([]Person, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validated per row below

	var persons []Person
	first := true

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrCSVParse, err)
		}

		if len(record) < config.CSVColumnCount {
			slog.Warn(config.MsgRowSkipped,
				config.LogKeyComponent, config.CompSource,
				config.LogKeyValue, record,
			)
			continue
		}

		birth, err := birthday.ParseDMY(record[config.CSVColBirth])
		if err != nil {
			if first {
				// Header row: the date column holds a column name.
				first = false
				continue
			}
			slog.Warn(config.MsgRowSkipped,
				config.LogKeyComponent, config.CompSource,
				config.LogKeyName, record[config.CSVColName],
				config.LogKeyValue, record[config.CSVColBirth],
			)
			continue
		}
		first = false

		persons = append(persons, Person{
			Name:      record[config.CSVColName],
			BirthDate: birth,
			Email:     record[config.CSVColEmail],
			Phone:     record[config.CSVColPhone],
		})
	}

	return persons, nil
}
