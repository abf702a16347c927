package statistics

import (
	"encoding/json"
	"strconv"
)

// NotApplicableText is how an undefined metric is rendered.
const NotApplicableText = "N/A"

// Metric is a derived value that may be undefined for an empty sample.
// The zero Metric is not applicable.
type Metric struct {
	value float64
	ok    bool
}

// Value returns a defined metric.
func Value(v float64) Metric {
	return Metric{value: v, ok: true}
}

// NotApplicable returns an undefined metric.
func NotApplicable() Metric {
	return Metric{}
}

// Float returns the value and whether it is defined.
func (m Metric) Float() (float64, bool) {
	return m.value, m.ok
}

// Applicable reports whether the metric is defined.
func (m Metric) Applicable() bool {
	return m.ok
}

// Format renders the value with the given precision, or N/A.
func (m Metric) Format(prec int) string {
	if !m.ok {
		return NotApplicableText
	}
	return strconv.FormatFloat(m.value, 'f', prec, 64)
}

func (m Metric) String() string {
	return m.Format(2)
}

// MarshalJSON encodes an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}
