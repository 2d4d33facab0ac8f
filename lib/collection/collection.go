package collection

import (
	"time"
)

// Collection is a single scheduled pickup of one kind of waste.
type Collection struct {
	// Date is the calendar day of the pickup, always midnight UTC.
	Date time.Time
	// Type is the human readable waste type label.
	Type string
	// Icon is an mdi icon identifier, empty when the source has none.
	Icon string
}

func NewCollection(date time.Time, wasteType, icon string) Collection {
	return Collection{
		Date: Day(date),
		Type: wasteType,
		Icon: icon,
	}
}

// Day truncates a time to its calendar day, dropping the timezone.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (c Collection) DateString() string {
	return c.Date.Format(time.DateOnly)
}
