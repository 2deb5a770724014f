package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Count is a counter the platform sends either as a JSON number or as display text such as "1.2万" or "10+".
// Values that cannot be read decode to zero.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == "" {
		*c = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*c = 0
			return nil
		}
		n, err := ParseCount(s)
		if err != nil {
			n = 0
		}
		*c = Count(n)
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = Count(int(math.Round(f)))
	return nil
}

var countSuffixes = []struct {
	suffix string
	mult   float64
}{
	{"亿", 1e8},
	{"万", 1e4},
	{"w", 1e4},
	{"W", 1e4},
	{"k", 1e3},
	{"K", 1e3},
}

// ParseCount reads a display counter. An empty string is zero.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "+")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}

	mult := 1.0
	for _, cs := range countSuffixes {
		if strings.HasSuffix(s, cs.suffix) {
			mult = cs.mult
			s = strings.TrimSpace(strings.TrimSuffix(s, cs.suffix))
			break
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", s, err)
	}
	return int(math.Round(f * mult)), nil
}

// Millis is a unix timestamp in milliseconds, sent as a number or a numeric string.
type Millis struct {
	time.Time
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		m.Time = time.Time{}
		return nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	if ms == 0 {
		m.Time = time.Time{}
		return nil
	}
	m.Time = time.UnixMilli(ms).UTC()
	return nil
}

// Text accepts a JSON string or number. Cursors switch between the two.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*t = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(raw)
	return nil
}
