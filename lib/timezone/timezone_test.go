package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSydneyCrossesDateLine(t *testing.T) {
	// 20:00 UTC on new year's eve is already new year's day in Sydney
	utc := time.Date(2024, time.December, 31, 20, 0, 0, 0, time.UTC)
	local := utc.In(Sydney)

	require.Equal(t, 2025, local.Year())
	require.Equal(t, time.January, local.Month())
	require.Equal(t, 1, local.Day())
}
