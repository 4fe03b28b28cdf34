package feed_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cumple/internal/feed"
	"github.com/tartampluch/go-cumple/internal/source"
)

func person(name, birth string) source.Person {
	t, err := time.Parse("2006-01-02", birth)
	if err != nil {
		panic(err)
	}
	return source.Person{Name: name, BirthDate: t}
}

func TestBuild_YearRange(t *testing.T) {
	// One event per year: previous, current, next. Clients can scroll in
	// either direction without an immediate re-sync.
	b := &feed.Builder{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	data, _, err := b.Build([]source.Person{person("Range Test", "1990-12-31")}, now)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20241231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20251231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20261231")
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestBuild_CountsToday(t *testing.T) {
	b := &feed.Builder{}
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, today, err := b.Build([]source.Person{
		person("Today", "1990-06-01"),
		person("Not Today", "1990-12-31"),
	}, now)

	require.NoError(t, err)
	assert.Equal(t, 1, today)
}

func TestBuild_LeaplingObservedFeb28(t *testing.T) {
	// Feb 29 births are observed on Feb 28 in non-leap years, matching the
	// day the congratulation goes out.
	b := &feed.Builder{}
	now := time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC)

	data, today, err := b.Build([]source.Person{person("Leapling", "2000-02-29")}, now)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250228", "Non-leap year observes Feb 28")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240229", "Leap year keeps the real date")
	assert.Equal(t, 1, today)
}

func TestBuild_SkipsYearsBeforeBirth(t *testing.T) {
	b := &feed.Builder{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	data, _, err := b.Build([]source.Person{person("Baby", "2025-05-01")}, now)
	require.NoError(t, err)

	ics := string(data)
	assert.NotContains(t, ics, "DTSTART;VALUE=DATE:20240501")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250501")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260501")
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestBuild_FutureBirthHasNoEvents(t *testing.T) {
	b := &feed.Builder{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	data, today, err := b.Build([]source.Person{person("Future Baby", "2027-01-01")}, now)
	require.NoError(t, err)

	// No events means the minimal stub document, still a valid VCALENDAR.
	ics := string(data)
	assert.NotContains(t, ics, "BEGIN:VEVENT")
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "END:VCALENDAR")
	assert.Equal(t, 0, today)
}

func TestBuild_EmptyListServesStub(t *testing.T) {
	b := &feed.Builder{}

	data, today, err := b.Build(nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, today)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))
}

func TestBuild_Reminders(t *testing.T) {
	b := &feed.Builder{ReminderTrigger: "-P1D"}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	data, _, err := b.Build([]source.Person{person("Alarm Test", "1990-01-01")}, now)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "BEGIN:VALARM")
	assert.Contains(t, ics, "TRIGGER:-P1D")
	assert.Contains(t, ics, "ACTION:DISPLAY")
}

func TestBuild_LocalizedSummaries(t *testing.T) {
	b := &feed.Builder{
		FormatSummary: func(name string, age int) string {
			if age == 0 {
				return "Cumpleaños: " + name + " (nacimiento)"
			}
			return "Cumpleaños: " + name
		},
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	data, _, err := b.Build([]source.Person{person("Bebé", "2025-05-01")}, now)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "Bebé (nacimiento)", "Age zero marks the birth event")
	assert.Contains(t, ics, "SUMMARY:Cumpleaños")
}

func TestBuild_StableUIDs(t *testing.T) {
	// Rebuilding the feed must not churn UIDs, or subscribed clients would
	// see every event as new.
	b := &feed.Builder{}
	persons := []source.Person{person("Stable", "1990-06-01")}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, _, err := b.Build(persons, now)
	require.NoError(t, err)
	second, _, err := b.Build(persons, now.Add(48*time.Hour))
	require.NoError(t, err)

	uids := func(ics string) []string {
		var out []string
		for _, line := range strings.Split(ics, "\r\n") {
			if strings.HasPrefix(line, "UID:") {
				out = append(out, line)
			}
		}
		return out
	}

	assert.Equal(t, uids(string(first)), uids(string(second)))
}
