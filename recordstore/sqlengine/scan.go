package sqlengine

import (
	"errors"
	"fmt"
	"time"
)

// timestampLayout is fixed-width UTC with microseconds: it sorts lexicographically in SQLite
// TEXT columns and is accepted as a timestamptz literal by PostgreSQL.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

var parseLayouts = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatNullableTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}

	return formatTimestamp(*t)
}

// dbTime scans timestamps from PostgreSQL (time.Time) and SQLite (TEXT) columns.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedTimestampFormat, src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range parseLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}

	return errors.Join(ErrUnsupportedTimestampFormat, errors.New(s))
}

func (t *dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}

	v := t.Time

	return &v
}
