package woollahra

import (
	"wcs-backend/lib/source"
)

const Name = "woollahra_nsw_gov_au"

var Info = source.Info{
	Name:        Name,
	Title:       "Woollahra Municipal Council (NSW)",
	Description: "Source for Woollahra Municipal Council rubbish collection.",
	URL:         "https://www.woollahra.nsw.gov.au/",
	TestCases: map[string]source.Args{
		"13 Paddington Street Paddington": {"address": "13 Paddington Street PADDINGTON NSW 2021"},
		"22 Oxford Street Paddington":     {"address": "22 Oxford Street PADDINGTON NSW 2021"},
	},
}

func init() {
	source.Register(Info, func(args source.Args) (source.Source, error) {
		address, err := args.String("address")
		if err != nil {
			return nil, err
		}
		return New(address), nil
	})
}
