// Package engine runs one processing batch: list persons, compute each
// birthday distance, send congratulations for the ones falling today, and
// append every outcome to the bitácora.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tartampluch/go-cumple/internal/birthday"
	"github.com/tartampluch/go-cumple/internal/bitacora"
	"github.com/tartampluch/go-cumple/internal/config"
	"github.com/tartampluch/go-cumple/internal/notify"
	"github.com/tartampluch/go-cumple/internal/source"
)

// Processor wires one run's collaborators. All dependencies are injected;
// the processor holds no global state and reads no environment.
type Processor struct {
	Clock    Clock
	Source   source.Source
	Notifier notify.Notifier
	Sink     bitacora.Sink

	// Process selects which contact field feeds the notifier
	// (config.ProcessEmail or config.ProcessWhatsApp).
	Process string

	// Location fixes the calendar in which "today" is determined.
	// Birthdays are local dates, not UTC instants.
	Location *time.Location

	// TemplateID names the congratulation template. Empty uses the default.
	TemplateID string

	// FormatMessage localizes the per-person status line. Nil uses the
	// calculator's English fallback.
	FormatMessage birthday.MessageFunc

	// DryRun computes and logs without sending or writing the bitácora.
	DryRun bool
}

// Stats summarizes one run.
type Stats struct {
	Processed int // rows that produced a bitácora entry (or would, in dry run)
	Sent      int // congratulations delivered
	Skipped   int // rows dropped (no contact address on a birthday)
	Today     int // birthdays falling on the reference date
}

// Run executes one batch and returns the run statistics together with the
// person list, which the caller may feed into the calendar builder.
// Row-level failures never abort the batch: a failed send is recorded in
// the bitácora with Notified=false and processing continues.
func (p *Processor) Run(ctx context.Context) (Stats, []source.Person, error) {
	start := time.Now()
	runID := uuid.New()

	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRunID, runID.String(),
		config.LogKeyProcess, p.Process,
	)
	log.Info(config.MsgRunStarted)

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	now := p.Clock.Now().In(loc)

	persons, err := p.Source.List(ctx)
	if err != nil {
		return Stats{}, nil, err
	}

	templateID := p.TemplateID
	if templateID == "" {
		templateID = config.DefaultEmailTemplate
	}

	var stats Stats
	for _, person := range persons {
		if err := ctx.Err(); err != nil {
			return stats, nil, err
		}

		info := birthday.Build(person.Name, person.BirthDate, now, p.FormatMessage)

		log.Debug(config.MsgRowProcessing,
			config.LogKeyName, info.Name,
			config.LogKeyDOB, person.BirthDate.Format(config.DateFormatDMY),
			config.LogKeyDays, info.DaysRemaining,
			config.LogKeyAge, info.Age,
		)

		notified := false
		if info.IsToday {
			stats.Today++
			log.Info(config.MsgBdayToday,
				config.LogKeyName, info.Name,
				config.LogKeyValue, info.Message,
			)
			if recipient := p.contact(person); recipient == "" {
				log.Warn(config.MsgRowNoContact, config.LogKeyName, info.Name)
				stats.Skipped++
			} else if !p.DryRun {
				notified = p.congratulate(ctx, log, person, recipient, templateID)
				if notified {
					stats.Sent++
				}
			}
		}

		if p.DryRun {
			log.Info(config.MsgDryRun, config.LogKeyName, info.Name)
			stats.Processed++
			continue
		}

		entry := bitacora.Entry{
			RunID:         runID,
			Date:          now,
			Name:          info.Name,
			DaysRemaining: info.DaysRemaining,
			Notified:      notified,
		}
		if err := p.Sink.Append(ctx, entry); err != nil {
			log.Error(config.MsgBitacoraFailed,
				config.LogKeyName, info.Name,
				config.LogKeyError, err,
			)
			continue
		}
		log.Debug(config.MsgBitacoraSaved, config.LogKeyName, info.Name)
		stats.Processed++
	}

	log.Info(config.MsgRunFinished,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyProcessed, stats.Processed),
			slog.Int(config.LogKeySent, stats.Sent),
			slog.Int(config.LogKeySkipped, stats.Skipped),
			slog.Int(config.LogKeyToday, stats.Today),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)

	return stats, persons, nil
}

// congratulate dispatches one message. Send failures are logged and
// reported as not notified; retrying is the provider's concern, not ours.
func (p *Processor) congratulate(ctx context.Context, log *slog.Logger, person source.Person, recipient, templateID string) bool {
	msg := notify.Message{
		Recipient:  recipient,
		TemplateID: templateID,
		Variables:  map[string]string{"nombre": person.Name},
	}

	if err := p.Notifier.Send(ctx, msg); err != nil {
		log.Error(config.MsgSendFailed,
			config.LogKeyName, person.Name,
			config.LogKeyRecipient, recipient,
			config.LogKeyError, err,
		)
		return false
	}

	log.Info(config.MsgSendOK,
		config.LogKeyName, person.Name,
		config.LogKeyRecipient, recipient,
	)
	return true
}

// contact picks the address matching the configured channel.
func (p *Processor) contact(person source.Person) string {
	switch p.Process {
	case config.ProcessWhatsApp:
		return person.Phone
	default:
		return person.Email
	}
}
