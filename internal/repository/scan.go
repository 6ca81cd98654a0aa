package repository

import (
	"fmt"
	"time"

	"github.com/mycinema/screening-engine/internal/model"
)

// timestampFormat is how MySQL renders TIMESTAMP columns when the
// driver is not asked to parse times ("2006-01-02 15:04:05", UTC).
const timestampFormat = "2006-01-02 15:04:05"

// parseTimestamp converts a DB timestamp string to time.Time in UTC.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// parseDateColumn converts a DATE column string to a model.Date.
func parseDateColumn(s string) (model.Date, error) {
	return model.ParseDate(s)
}

// parseTimeColumn converts a TIME column string ("15:04:05") to a
// model.Clock, dropping the seconds.
func parseTimeColumn(s string) (model.Clock, error) {
	if len(s) > len(model.ClockFormat) {
		s = s[:len(model.ClockFormat)]
	}
	return model.ParseClock(s)
}

// clockColumn renders a model.Clock for a TIME column.
func clockColumn(c model.Clock) string {
	return c.String() + ":00"
}
