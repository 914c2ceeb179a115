// Package province holds the Canadian provinces and territories used for
// regional pricing and listing searches.
package province

// Region is a province or territory with its two-letter code.
type Region struct {
	Name string
	Code string
}

var codes = map[string]string{
	"Alberta":                   "AB",
	"British Columbia":          "BC",
	"Manitoba":                  "MB",
	"New Brunswick":             "NB",
	"Newfoundland and Labrador": "NL",
	"Northwest Territories":     "NT",
	"Nova Scotia":               "NS",
	"Nunavut":                   "NU",
	"Ontario":                   "ON",
	"Prince Edward Island":      "PE",
	"Quebec":                    "QC",
	"Saskatchewan":              "SK",
	"Yukon":                     "YT",
}

// All is the canonical order of the thirteen regions.
var All = []string{
	"Alberta",
	"British Columbia",
	"Manitoba",
	"New Brunswick",
	"Newfoundland and Labrador",
	"Northwest Territories",
	"Nova Scotia",
	"Nunavut",
	"Ontario",
	"Prince Edward Island",
	"Quebec",
	"Saskatchewan",
	"Yukon",
}

// Code maps a full name to its code. Matching is exact.
func Code(name string) (string, bool) {
	code, ok := codes[name]
	return code, ok
}
