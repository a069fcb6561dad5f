// Package normalize canonicalizes scraped date tokens and synthesizes
// draw times from a configured schedule.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultFirstDraw is used when the configured first-draw time is malformed.
const DefaultFirstDraw = "10:20"

var (
	monthNameRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4})$`)
	canonicalRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Date canonicalizes a raw date token to YYYY-MM-DD. Recognized inputs are
// "D Month YYYY" (full or abbreviated month, any case), DD/MM/YYYY,
// DD-MM-YYYY, and YYYY-MM-DD (pass-through). Unrecognized input is returned
// unchanged; callers treat an unrecognized date as a soft failure by
// checking its shape downstream.
func Date(raw string) string {
	raw = strings.TrimSpace(raw)

	if m := monthNameRe.FindStringSubmatch(raw); m != nil {
		if month, ok := monthByName(m[2]); ok {
			return fmt.Sprintf("%s-%02d-%s", m[3], month, pad2(m[1]))
		}
		return raw
	}
	if parts := strings.Split(raw, "/"); len(parts) == 3 {
		return parts[2] + "-" + parts[1] + "-" + parts[0]
	}
	if parts := strings.Split(raw, "-"); len(parts) == 3 {
		if len(parts[0]) == 4 {
			return raw
		}
		return parts[2] + "-" + parts[1] + "-" + parts[0]
	}
	return raw
}

// ValidDate reports whether s is a canonical, real calendar date.
func ValidDate(s string) bool {
	if !canonicalRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func monthByName(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0, false
	}
	month, ok := months[name[:3]]
	if !ok {
		return 0, false
	}
	// A longer name must still be a prefix of the full month name,
	// so "January" matches but "Janitor" does not.
	full := strings.ToLower(month.String())
	if len(name) > 3 && !strings.HasPrefix(full, name) {
		return 0, false
	}
	return month, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Schedule synthesizes per-draw times when the source page omits them.
type Schedule struct {
	first    time.Time
	interval time.Duration
}

// NewSchedule builds a Schedule from a first-draw time in HH:MM form and an
// interval in minutes. A malformed first-draw time falls back to
// DefaultFirstDraw; a non-positive interval is a configuration error.
func NewSchedule(firstDraw string, intervalMinutes int) (Schedule, error) {
	if intervalMinutes <= 0 {
		return Schedule{}, fmt.Errorf("schedule interval must be > 0 minutes, got %d", intervalMinutes)
	}
	first, err := time.Parse("15:04", strings.TrimSpace(firstDraw))
	if err != nil {
		first, _ = time.Parse("15:04", DefaultFirstDraw)
	}
	return Schedule{
		first:    first,
		interval: time.Duration(intervalMinutes) * time.Minute,
	}, nil
}

// Times returns count successive HH:MM draw times starting at the
// first-draw time. The payload at section position i gets Times(count)[i].
func (s Schedule) Times(count int) []string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.first.Add(time.Duration(i)*s.interval).Format("15:04"))
	}
	return out
}
