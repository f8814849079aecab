package sqlite

import (
	"database/sql"
	"time"
)

// Nanos converts a timestamp to its stored form
func Nanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

// NullNanos converts an optional timestamp to its stored form
func NullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: Nanos(*t), Valid: true}
}

// FromNanos converts a stored timestamp back to UTC time
func FromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// FromNullNanos converts an optional stored timestamp
func FromNullNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := FromNanos(n.Int64)
	return &t
}
