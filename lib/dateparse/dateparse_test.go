package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFuzzyDayFirst(t *testing.T) {
	// a Wednesday
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		text     string
		expected time.Time
	}{
		{text: "15/03/2025", expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{text: "03/04/2025", expected: time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)},
		{text: "Next service: Tue 15/04/2025", expected: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{text: "04/15/2025", expected: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{text: "15-03-25", expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{text: "2025-03-15", expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{text: "Monday 17 March 2025", expected: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)},
		{text: "Thursday, 1st May 2025", expected: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{text: "March 20, 2025", expected: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)},
		{text: "Your next collection is on Fri 21 Mar", expected: time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)},
		{text: "15/03", expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{text: "Friday", expected: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{text: "Wednesday", expected: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{text: "Tuesday 18 March 2025, bins out by 6.30 pm", expected: time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)},
		{text: "18 March 2025 - 7.00 am", expected: time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)},
		{text: "Place out after 6.30pm on 18/03/2025", expected: time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)},
		{text: "Collected from 06:00 on Fri 21 Mar", expected: time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)},
		{text: "Bins may be out from 15/04/2025", expected: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{text: "Clean up on the 2nd of September 2025", expected: time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)},
		{text: "March 2025", expected: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
	}

	for _, test := range cases {
		t.Run(test.text, func(t *testing.T) {
			date, err := ParseFuzzyDayFirst(test.text, now)
			require.NoError(t, err)
			require.Equal(t, test.expected, date)
		})
	}
}

func TestParseFuzzyDayFirstInvalid(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	for _, text := range []string{
		"",
		"To be confirmed",
		"No service booked",
		"31/02/2025",
		"15/13/2025",
		"Bins out by 6.30 pm",
		"Collected after 18:00",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseFuzzyDayFirst(text, now)
			require.Error(t, err)
		})
	}
}

func TestParseFuzzyDayFirstNoDate(t *testing.T) {
	_, err := ParseFuzzyDayFirst("booking required", time.Now())
	require.ErrorIs(t, err, ErrNoDate)
}

func TestParseFuzzyDayFirstMonthYearClampsDay(t *testing.T) {
	now := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)

	date, err := ParseFuzzyDayFirst("February 2025", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), date)
}
