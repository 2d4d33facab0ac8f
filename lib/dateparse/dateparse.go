// Package dateparse extracts a calendar date from free-form text, the kind of
// text council websites put next to a service ("Next service: Tue 15/04/2025").
package dateparse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrNoDate = fmt.Errorf("text does not contain a date")

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var weekdays = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

var (
	isoDateRegex     = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	numericDateRegex = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})(?:[-/.](\d{2}|\d{4}))?\b`)
	tokenRegex       = regexp.MustCompile(`[a-z]+|\d+`)

	// times of day look like numeric dates ("6.30 pm", "18:00") so they are
	// blanked out before any date matching
	timeRegex = regexp.MustCompile(`\b\d{1,2}(?:[.:]\d{2})?\s*(?:[ap]m\b|[ap]\.m\.)|\b\d{1,2}:\d{2}(?::\d{2})?\b`)

	monthNames     = monthAlternation()
	dayMonthRegex  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?(?:\s+of)?\s+(` + monthNames + `)\b(?:,?\s+(\d{4})\b)?`)
	monthDayRegex  = regexp.MustCompile(`\b(` + monthNames + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	monthYearRegex = regexp.MustCompile(`\b(` + monthNames + `),?\s+(\d{4})\b`)
)

// longest names first so "september" is not read as "sep"
func monthAlternation() string {
	names := make([]string, 0, len(months))
	for name := range months {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}

type fields struct {
	year    int
	month   time.Month
	day     int
	weekday time.Weekday
	// hasWeekday is needed since time.Sunday is the zero value
	hasWeekday bool
	// the day is taken from now when only a month and year are given
	dayFromNow bool
}

// ParseFuzzyDayFirst finds a date in text, skipping any words that are not
// part of a date. A date written with a month name wins over a numeric one,
// and times of day are never read as dates. Ambiguous numeric dates are read
// day first, so "03/04/2025" is the 3rd of April. A missing year is taken
// from now, a month and year without a day take the day from now (clamped to
// the end of the month), a lone weekday resolves to its next occurrence on or
// after now.
func ParseFuzzyDayFirst(text string, now time.Time) (time.Time, error) {
	lowered := timeRegex.ReplaceAllString(strings.ToLower(text), " ")

	var f fields
	if groups := isoDateRegex.FindStringSubmatch(lowered); groups != nil {
		f.year = atoi(groups[1])
		f.month = time.Month(atoi(groups[2]))
		f.day = atoi(groups[3])
		return f.resolve(text, now)
	}
	if named, ok := findNamedMonthDate(lowered); ok {
		return named.resolve(text, now)
	}
	if groups := numericDateRegex.FindStringSubmatch(lowered); groups != nil {
		first, second := atoi(groups[1]), atoi(groups[2])
		f.day, f.month = first, time.Month(second)
		// fall back to month first when the day first reading is impossible
		if second > 12 && first <= 12 {
			f.day, f.month = second, time.Month(first)
		}
		if groups[3] != "" {
			f.year = expandYear(groups[3])
		}
		return f.resolve(text, now)
	}
	if groups := monthYearRegex.FindStringSubmatch(lowered); groups != nil {
		f.month = months[groups[1]]
		f.year = atoi(groups[2])
		f.dayFromNow = true
		return f.resolve(text, now)
	}

	f.weekday, f.hasWeekday = findWeekday(lowered)
	return f.resolve(text, now)
}

// findNamedMonthDate returns the leftmost "18 March [2025]" or
// "March 18[, 2025]" in lowered.
func findNamedMonthDate(lowered string) (fields, bool) {
	var f fields
	best := -1

	if loc := dayMonthRegex.FindStringSubmatchIndex(lowered); loc != nil {
		best = loc[0]
		f.day = atoi(lowered[loc[2]:loc[3]])
		f.month = months[lowered[loc[4]:loc[5]]]
		if loc[6] >= 0 {
			f.year = atoi(lowered[loc[6]:loc[7]])
		}
	}
	if loc := monthDayRegex.FindStringSubmatchIndex(lowered); loc != nil && (best < 0 || loc[0] < best) {
		best = loc[0]
		f = fields{
			month: months[lowered[loc[2]:loc[3]]],
			day:   atoi(lowered[loc[4]:loc[5]]),
		}
		if loc[6] >= 0 {
			f.year = atoi(lowered[loc[6]:loc[7]])
		}
	}
	return f, best >= 0
}

func findWeekday(lowered string) (time.Weekday, bool) {
	for _, token := range tokenRegex.FindAllString(lowered, -1) {
		if wd, ok := weekdays[token]; ok {
			return wd, true
		}
	}
	return time.Sunday, false
}

func (f fields) resolve(text string, now time.Time) (time.Time, error) {
	if f.day == 0 && f.month == 0 && f.year == 0 && f.hasWeekday {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(f.weekday) - int(today.Weekday()) + 7) % 7
		return today.AddDate(0, 0, offset), nil
	}
	if f.dayFromNow && f.month >= time.January && f.month <= time.December {
		lastDay := time.Date(f.year, f.month+1, 0, 0, 0, 0, 0, time.UTC).Day()
		f.day = min(now.Day(), lastDay)
	}
	if f.day == 0 || f.month == 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNoDate, text)
	}
	if f.year == 0 {
		f.year = now.Year()
	}
	if f.month < time.January || f.month > time.December {
		return time.Time{}, fmt.Errorf("month out of range in %q", text)
	}

	date := time.Date(f.year, f.month, f.day, 0, 0, 0, 0, time.UTC)
	if date.Day() != f.day || date.Month() != f.month {
		return time.Time{}, fmt.Errorf("day out of range for month in %q", text)
	}
	return date, nil
}

func expandYear(s string) int {
	n := atoi(s)
	if len(s) == 2 {
		return 2000 + n
	}
	return n
}

// only ever called on strings matched by \d+
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
