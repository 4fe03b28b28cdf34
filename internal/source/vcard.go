package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-cumple/internal/config"
)

// VCardSource reads persons from a vCard address book, either a local .vcf
// file or a remote URL with optional HTTP Basic Auth.
type VCardSource struct {
	Mode    string // config.SourceModeVCard or config.SourceModeVCardWeb
	Path    string
	URL     string
	User    string
	Pass    string
	Fetcher Fetcher
}

// List decodes the vCard stream. Cards without a parseable BDAY are skipped
// with a debug log; malformed cards are skipped with a warning to maximize
// data recovery, matching the forgiving nature of address book exports.
func (s *VCardSource) List(ctx context.Context) ([]Person, error) {
	reader, err := s.acquireStream(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	// Best effort close. Errors in Close() for read-only streams are rarely actionable here.
	defer func() { _ = reader.Close() }()

	decoder := vcard.NewDecoder(reader)
	var persons []Person

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompSource,
				config.LogKeyError, err)
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, err := parseVCardDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompSource,
				config.LogKeyValue, bday.Value)
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil {
			name = n.Value
		}

		p := Person{Name: name, BirthDate: birthDate}
		if email := card.Get(config.VCardEmail); email != nil {
			p.Email = email.Value
		}
		if tel := card.Get(config.VCardTel); tel != nil {
			p.Phone = tel.Value
		}

		persons = append(persons, p)
	}

	return persons, nil
}

// acquireStream opens the appropriate data source based on configuration.
func (s *VCardSource) acquireStream(ctx context.Context) (io.ReadCloser, error) {
	switch s.Mode {
	case config.SourceModeVCard:
		if s.Path == "" {
			return nil, errors.New(config.ErrSourcePathEmpty)
		}
		return os.Open(s.Path)
	case config.SourceModeVCardWeb:
		if s.URL == "" {
			return nil, errors.New(config.ErrSourceURLEmpty)
		}
		if s.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return s.Fetcher.Fetch(ctx, s.URL, s.User, s.Pass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, s.Mode)
	}
}

// parseVCardDate handles the vCard date formats seen in the wild.
// Truncated dates (--MM-DD, year unknown) are anchored to a leap year so a
// Feb 29 value stays representable.
func parseVCardDate(value string) (time.Time, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, nil
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, errors.New(config.ErrDateParse)
}
