package bitacora

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/tartampluch/go-cumple/internal/config"
)

// CSVSink appends entries to a local CSV file, the file-based stand-in for
// a spreadsheet bitácora tab. The header is written when the file is
// created; existing files are only ever appended to.
type CSVSink struct {
	Path string
}

var csvHeader = []string{"run_id", "fecha", "nombre", "dias_para_cumple", "notificacion_enviada"}

// NewCSVSink creates a sink for the given file path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

// Append opens, writes one row, and closes. Runs are short and sequential,
// so reopening per entry keeps the file consistent even if the process is
// killed mid-run.
func (s *CSVSink) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, statErr := os.Stat(s.Path)
	writeHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrBitacoraOpen, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("%s: %w", config.ErrBitacoraWrite, err)
		}
	}

	record := []string{
		e.RunID.String(),
		e.Date.Format(config.DateFormatDMY),
		e.Name,
		strconv.Itoa(e.DaysRemaining),
		strconv.FormatBool(e.Notified),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("%s: %w", config.ErrBitacoraWrite, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrBitacoraWrite, err)
	}
	return nil
}
