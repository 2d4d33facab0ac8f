package woollahra

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"wcs-backend/lib/collection"
	"wcs-backend/lib/dateparse"
	"wcs-backend/lib/htmlutil"
	"wcs-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const cleanupIcon = "mdi:delete-sweep"
const defaultIcon = "mdi:trash-can"

var iconMap = map[string]string{
	"General Waste":   "mdi:trash-can",
	"Green Waste":     "mdi:leaf",
	"Recycling":       "mdi:recycle",
	"Spring Clean-Up": cleanupIcon,
	"Summer Clean-Up": cleanupIcon,
	"Winter Clean-Up": cleanupIcon,
}

func iconFor(wasteType string) string {
	icon, ok := iconMap[wasteType]
	if !ok {
		return defaultIcon
	}
	return icon
}

var seasons = []struct {
	match string
	label string
}{
	{match: "spring", label: "Spring Clean-Up"},
	{match: "summer", label: "Summer Clean-Up"},
	{match: "winter", label: "Winter Clean-Up"},
}

// normalizeWasteType maps the many spellings of the seasonal clean-ups
// ("Spring Clean Up Service", "WINTER CLEAN-UP") onto one label.
func normalizeWasteType(label string) string {
	for _, season := range seasons {
		if textutil.MatchAll(label, season.match, "clean") {
			return season.label
		}
	}
	return label
}

// parseServices reads the waste service blocks out of the html fragment.
// Blocks without a heading, a next service or a readable date are skipped.
func parseServices(ctx context.Context, content string, now time.Time) ([]collection.Collection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var entries []collection.Collection
	doc.Find("div.waste-services-result").Each(func(_ int, block *goquery.Selection) {
		wasteType, ok := htmlutil.FirstText(block, "h3")
		if !ok {
			return
		}
		wasteType = normalizeWasteType(wasteType)

		dateText, ok := htmlutil.FirstText(block, "div.next-service")
		if !ok {
			return
		}

		date, err := dateparse.ParseFuzzyDayFirst(dateText, now)
		if err != nil {
			slog.DebugContext(ctx, "skipping service with unreadable date", "type", wasteType, "text", dateText, "err", err)
			return
		}

		entries = append(entries, collection.NewCollection(date, wasteType, iconFor(wasteType)))
	})

	return entries, nil
}
