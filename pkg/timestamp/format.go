package timestamp

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"
)

// Layout is the textual form of timestamps ("YYYY-MM-DD HH:MM:SS").
const Layout = time.DateTime

// Format renders a timestamp field value with Layout. Epoch values are read as
// seconds since the Unix epoch and rendered in UTC. It reports false for unset
// values.
func Format(v any) (string, bool) {
	t, ok := ToTime(v)
	if !ok {
		return "", false
	}
	return t.Format(Layout), true
}

// ToTime converts a timestamp field value to a time.Time.
func ToTime(v any) (time.Time, bool) {
	if !Present(v) {
		return time.Time{}, false
	}

	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		return *x, true
	case sql.NullTime:
		return x.Time, true
	case sql.NullInt64:
		return time.Unix(x.Int64, 0).UTC(), true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Unix(rv.Int(), 0).UTC(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Unix(int64(rv.Uint()), 0).UTC(), true
	}
	return time.Time{}, false
}

// Parse reads a Layout formatted string in loc. A nil loc means UTC.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp: parse %q: %w", s, err)
	}
	return t, nil
}
