package form

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draft holds the fields collected so far. An optional field that was
// skipped is present with a nil value.
type Draft struct {
	Kind   Kind
	values map[string]any
}

func newDraft(kind Kind, seed map[string]any) Draft {
	d := Draft{Kind: kind, values: make(map[string]any, len(seed)+4)}
	for k, v := range seed {
		d.values[k] = v
	}
	return d
}

func (d Draft) clone() Draft {
	return newDraft(d.Kind, d.values)
}

func (d Draft) set(field StepID, v any) {
	d.values[string(field)] = v
}

// Has reports whether field holds a non-nil value.
func (d Draft) Has(field string) bool {
	v, ok := d.values[field]
	return ok && v != nil
}

func (d Draft) String(field string) (string, bool) {
	v, ok := d.values[field].(string)
	return v, ok
}

// StringPtr returns nil for an absent or skipped field.
func (d Draft) StringPtr(field string) *string {
	if v, ok := d.String(field); ok {
		return &v
	}
	return nil
}

func (d Draft) Decimal(field string) (decimal.Decimal, bool) {
	v, ok := d.values[field].(decimal.Decimal)
	return v, ok
}

func (d Draft) Time(field string) (time.Time, bool) {
	v, ok := d.values[field].(time.Time)
	return v, ok
}

func (d Draft) TimePtr(field string) *time.Time {
	if v, ok := d.Time(field); ok {
		return &v
	}
	return nil
}

func (d Draft) Int64(field string) (int64, bool) {
	v, ok := d.values[field].(int64)
	return v, ok
}

func (d Draft) Int64Ptr(field string) *int64 {
	if v, ok := d.Int64(field); ok {
		return &v
	}
	return nil
}
