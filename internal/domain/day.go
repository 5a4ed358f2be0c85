package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the ISO calendar date format used for training days
const DateLayout = "2006-01-02"

// DateKey returns t as an ISO calendar date
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DayLabel is the user's current training day. Records written by older
// versions store a sequence counter, newer ones store an ISO date.
type DayLabel struct {
	Date string
	Seq  int
}

// DateLabel returns a label holding an ISO date
func DateLabel(t time.Time) DayLabel {
	return DayLabel{Date: DateKey(t)}
}

// IsZero reports whether the label is unset
func (d DayLabel) IsZero() bool {
	return d.Date == "" && d.Seq == 0
}

// String returns the label in a display-friendly form
func (d DayLabel) String() string {
	switch {
	case d.Date != "":
		return d.Date
	case d.Seq != 0:
		return strconv.Itoa(d.Seq)
	default:
		return ""
	}
}

// DisplayString returns a user-friendly form of the label relative to now
func (d DayLabel) DisplayString(now time.Time) string {
	if d.Date == "" {
		if d.Seq != 0 {
			return fmt.Sprintf("יום %d", d.Seq)
		}
		return "—"
	}

	if d.Date == DateKey(now) {
		return "היום"
	}
	if d.Date == DateKey(now.AddDate(0, 0, -1)) {
		return "אתמול"
	}
	return d.Date
}

// MarshalJSON keeps the form the label was read in
func (d DayLabel) MarshalJSON() ([]byte, error) {
	switch {
	case d.Date != "":
		return json.Marshal(d.Date)
	case d.Seq != 0:
		return json.Marshal(d.Seq)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, an integer counter or a date string
func (d *DayLabel) UnmarshalJSON(data []byte) error {
	*d = DayLabel{}
	if string(data) == "null" {
		return nil
	}

	var seq int
	if err := json.Unmarshal(data, &seq); err == nil {
		d.Seq = seq
		return nil
	}

	var date string
	if err := json.Unmarshal(data, &date); err != nil {
		return fmt.Errorf("currentDay must be a number, a string or null: %w", err)
	}
	d.Date = date
	return nil
}
