package lbbd

import (
	"wcs-backend/lib/source"
)

const Name = "lbbd_gov_uk"

var Info = source.Info{
	Name:        Name,
	Title:       "London Borough of Barking and Dagenham",
	Description: "Source for London Borough of Barking and Dagenham.",
	URL:         "https://www.lbbd.gov.uk/",
	TestCases: map[string]source.Args{
		"100 Heathway":      {"uprn": "100014033"},
		"40 Porters Avenue": {"uprn": "100024629"},
	},
}

func init() {
	source.Register(Info, func(args source.Args) (source.Source, error) {
		uprn, err := args.String("uprn")
		if err != nil {
			return nil, err
		}
		return New(uprn), nil
	})
}
