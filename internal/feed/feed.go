// Package feed renders the upcoming-birthdays iCalendar document served
// over HTTP. Calendar clients subscribe to it alongside the notification
// channels.
package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/go-cumple/internal/birthday"
	"github.com/tartampluch/go-cumple/internal/config"
	"github.com/tartampluch/go-cumple/internal/source"
)

// Builder converts a person list into an ICS document.
type Builder struct {
	// ReminderTrigger is an ISO8601 duration string (e.g., "-P1D") attached
	// as a DISPLAY alarm to every event. Empty disables alarms.
	ReminderTrigger string

	// FormatSummary injects localized event summaries. Nil falls back to a
	// fixed English format.
	FormatSummary func(name string, age int) string
}

// Build generates the calendar for the given persons relative to now.
// It returns the encoded ICS data and the number of birthdays falling on
// now's calendar date.
func (b *Builder) Build(persons []source.Person, now time.Time) ([]byte, int, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: suggest a refresh interval.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Events are placed on local calendar dates; only the DTSTAMP uses UTC.
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, p := range persons {
		uid := eventUID(p)
		events, isToday := b.createEvents(p, now, uid)
		if isToday {
			today++
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// A VCALENDAR with no components is invalid; serve the stub instead so
	// subscribed clients do not flag the feed.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), today, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedGenerated,
		config.LogKeyComponent, config.CompFeed,
		config.LogKeySizeBytes, buf.Len(),
		config.LogKeyToday, today,
	)
	return buf.Bytes(), today, nil
}

// createEvents generates events for the previous, current, and next year so
// calendar clients can scroll in either direction without an immediate
// re-sync. No event is created before the person is born.
func (b *Builder) createEvents(p source.Person, now time.Time, uidBase string) ([]*ical.Event, bool) {
	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}
	loc := now.Location()

	var events []*ical.Event
	isToday := false

	todayYear, todayMonth, todayDay := now.Date()

	for _, y := range targetYears {
		if y < p.BirthDate.Year() {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		age := y - p.BirthDate.Year()

		summary := fmt.Sprintf(config.FallbackSummary, p.Name)
		if b.FormatSummary != nil {
			summary = b.FormatSummary(p.Name, age)
		}
		event.Props.SetText(config.PropSummary, summary)

		// Same occurrence rule as the notifier, so the calendar shows the
		// event on the day the congratulation actually goes out.
		eventDate := birthday.OccurrenceIn(y, p.BirthDate, loc)

		if y == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if b.ReminderTrigger != "" {
			addAlarm(event, b.ReminderTrigger, summary)
		}

		events = append(events, event)
	}
	return events, isToday
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// eventUID derives a stable identifier from the person's identity so feed
// refreshes do not churn UIDs.
func eventUID(p source.Person) string {
	input := fmt.Sprintf(config.FormatHashInput,
		p.Name, p.BirthDate.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
