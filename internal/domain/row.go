package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Row is one unit of work: a structured record or an object reference.
// Column names map to scalar values; the engine never interprets payload
// columns, only identity, status and freshness columns.
type Row map[string]any

// Key builds the composite identity of the row from the given key
// columns. Components are joined with a unit separator so multi-column
// keys cannot collide with single-column keys that contain delimiters.
func (r Row) Key(cols []string) string {
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, keyComponent(r[col]))
	}
	return strings.Join(parts, "\x1f")
}

// Status returns the trimmed value of the row's status column.
func (r Row) Status(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return strings.TrimSpace(s)
}

// Freshness returns the row's freshness timestamp, or the zero time when
// the column is absent or unparseable.
func (r Row) Freshness(col string) time.Time {
	v, ok := r[col]
	if !ok || v == nil {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(t))
		if err != nil {
			return time.Time{}
		}
		return parsed.UTC()
	default:
		return time.Time{}
	}
}

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for col := range r {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func keyComponent(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", t)
	}
}
