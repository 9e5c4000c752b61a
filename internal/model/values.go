package model

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// Rate is a percentage value. It decodes from a JSON number, a numeric string
// (an optional trailing "%" is ignored) or null. Anything unparseable is 0.
type Rate float64

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rate) UnmarshalJSON(data []byte) error {
	s, quoted := jsonScalar(data)
	if quoted {
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	}
	*r = Rate(ParseFloat(s))
	return nil
}

// Float returns the rate as a float64.
func (r Rate) Float() float64 {
	return float64(r)
}

// Count is an integer counter. It decodes from a JSON number, a numeric string
// or null. Anything unparseable is 0.
type Count int64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	s, quoted := jsonScalar(data)
	if quoted {
		*c = Count(ParseInt(s))
		return nil
	}
	*c = Count(int64(ParseFloat(s)))
	return nil
}

// Int returns the counter as an int64.
func (c Count) Int() int64 {
	return int64(c)
}

// ID is a record identifier that may arrive as a JSON number or string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, _ := jsonScalar(data)
	*id = ID(strings.TrimSpace(s))
	return nil
}

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// Timestamp is a point in time decoded leniently. The zero value means the
// source was null, missing or unparseable.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000000",
	"2006-01-02 15:04:05.000000",
	"2006-01-02",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s with the accepted layouts. Layouts without a zone
// are read as UTC.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	return Timestamp{}, false
}

// Valid reports whether the timestamp holds a parsed time.
func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, _ := jsonScalar(data)
	parsed, _ := ParseTimestamp(s)
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// ParseFloat reads the longest numeric prefix of s, returning 0 when there is none.
func ParseFloat(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseInt reads the longest integer prefix of s, returning 0 when there is none.
func ParseInt(s string) int64 {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// jsonScalar returns the textual form of a JSON scalar and whether it was a string.
// null and non-scalars yield "".
func jsonScalar(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", true
		}
		return s, true
	}
	if data[0] == '{' || data[0] == '[' {
		return "", false
	}
	return string(data), false
}
