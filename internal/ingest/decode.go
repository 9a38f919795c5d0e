package ingest

import (
	"strings"
	"time"

	"example.com/wellness/internal/domain"
)

// dateLayouts are tried in order: ISO, US short, slash year-first.
var dateLayouts = []string{"2006-01-02", "1/2/06", "2006/1/2"}

// Row is one decoded CSV record: its date plus the non-blank raw value of each resolved field.
type Row struct {
	Line   int
	Date   time.Time
	Values map[domain.Field]string
}

// Value returns the raw value for f, or false when the cell was blank or the column unresolved.
func (r Row) Value(f domain.Field) (string, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// Decoder extracts canonical values from raw records using a resolved header.
type Decoder struct {
	index HeaderIndex
}

// NewDecoder constructs a Decoder for the given header index.
func NewDecoder(index HeaderIndex) *Decoder {
	return &Decoder{index: index}
}

// Decode converts one record. Blank cells are left absent; numeric coercion is deferred to the merge.
func (d *Decoder) Decode(line int, record []string) (Row, error) {
	values := make(map[domain.Field]string, len(d.index))
	for field, col := range d.index {
		if col >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[col]); v != "" {
			values[field] = v
		}
	}

	raw := values[domain.FieldDate]
	date, err := ParseDate(raw)
	if err != nil {
		return Row{}, &domain.BadDateError{Raw: raw, Line: line}
	}
	delete(values, domain.FieldDate)

	return Row{Line: line, Date: date, Values: values}, nil
}

// ParseDate parses a calendar date in one of the accepted layouts. Two-digit years fall in 2000-2099.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if layout == "1/2/06" && parsed.Year() < 2000 {
			parsed = parsed.AddDate(100, 0, 0)
		}
		return domain.CalendarDate(parsed), nil
	}
	return time.Time{}, &domain.BadDateError{Raw: raw}
}
