package timezone

import (
	"time"

	// councils are matched to their local time even where the host has no zoneinfo
	_ "time/tzdata"
)

// Sydney is the local time of the NSW councils.
var Sydney *time.Location

func init() {
	var err error
	Sydney, err = time.LoadLocation("Australia/Sydney")
	if err != nil {
		panic(err)
	}
}
