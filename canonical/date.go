package canonical

import (
	"encoding/json"
	"time"
)

// =============================================================================
// DATE - Nullable ISO date (YYYY-MM-DD)
// =============================================================================

// ISODate is the canonical date layout all dates normalize to.
const ISODate = "2006-01-02"

// Date is a nullable calendar date. The zero value is null, which is what a
// carrier row with an empty date cell produces.
type Date struct {
	Time  time.Time
	Valid bool
}

// DateOf builds a valid Date from a time, truncated to day granularity in UTC.
func DateOf(t time.Time) Date {
	return Date{
		Time:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

// NewDate builds a valid Date from components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// String returns the ISO form, or "" when null.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(ISODate)
}

// Equal reports whether two dates are both null or the same day.
func (d Date) Equal(other Date) bool {
	if d.Valid != other.Valid {
		return false
	}
	return !d.Valid || d.Time.Equal(other.Time)
}

// MarshalJSON renders "YYYY-MM-DD" or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.ParseInLocation(ISODate, *s, time.UTC)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}
