package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts of local date-times without a zone, as datetime inputs send them.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// Timestamp is a time.Time read leniently. A value read without a zone keeps
// its layout and is written back unchanged; everything else is RFC 3339.
type Timestamp struct {
	time.Time
	layout string
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp reads RFC 3339 or a zone-less local date-time. The latter is
// placed in time.Local, but its wall clock is what gets sent on.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Timestamp{Time: t}, nil
	}

	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return Timestamp{Time: t, layout: layout}, nil
		}
	}

	return Timestamp{}, fmt.Errorf("unsupported timestamp %q", value)
}

// HasZone reports whether the value carries its own offset.
func (d Timestamp) HasZone() bool {
	return d.layout == ""
}

func (d Timestamp) String() string {
	if d.HasZone() {
		return d.Time.Format(time.RFC3339)
	}
	return d.Time.Format(d.layout)
}

func (d Timestamp) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.String())
}

func (d *Timestamp) UnmarshalJSON(data []byte) error {
	var str *string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	if str == nil || *str == "" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseTimestamp(*str)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
