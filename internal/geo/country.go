package geo

import (
	"strings"

	"golang.org/x/text/language"
)

// Global is the wildcard entry that matches every country in a supported list.
const Global = "GLOBAL"

// aliases maps lower-cased country names and abbreviations to ISO-3166 alpha-2 codes.
var aliases = map[string]string{
	"saudi arabia":             "SA",
	"kingdom of saudi arabia":  "SA",
	"ksa":                      "SA",
	"united arab emirates":     "AE",
	"uae":                      "AE",
	"kuwait":                   "KW",
	"qatar":                    "QA",
	"bahrain":                  "BH",
	"oman":                     "OM",
	"usa":                      "US",
	"united states":            "US",
	"united states of america": "US",
	"uk":                       "GB",
	"united kingdom":           "GB",
	"great britain":            "GB",
	"france":                   "FR",
	"global":                   Global,
}

// gcc lists the Gulf Cooperation Council members outside the home market.
var gcc = map[string]struct{}{
	"AE": {},
	"KW": {},
	"QA": {},
	"BH": {},
	"OM": {},
}

// Normalize converts a country name or code into its ISO alpha-2 form.
// Values that are neither a known alias nor a valid region are upper-cased so
// comparisons stay deterministic.
func Normalize(country string) string {
	trimmed := strings.TrimSpace(country)
	if trimmed == "" {
		return ""
	}
	if code, ok := aliases[strings.ToLower(trimmed)]; ok {
		return code
	}
	if len(trimmed) == 2 {
		if region, err := language.ParseRegion(trimmed); err == nil && region.IsCountry() {
			return region.String()
		}
	}
	return strings.ToUpper(trimmed)
}

// NormalizeAll normalises each entry and drops blanks and duplicates.
func NormalizeAll(countries []string) []string {
	if len(countries) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(countries))
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		code := Normalize(c)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// Is reports whether two country values refer to the same country.
func Is(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// ContainsCountry reports whether country is present in list, comparing
// normalised forms so names and ISO codes match each other.
func ContainsCountry(list []string, country string) bool {
	target := Normalize(country)
	if target == "" {
		return false
	}
	for _, entry := range list {
		if Normalize(entry) == target {
			return true
		}
	}
	return false
}

// SupportsCountry is ContainsCountry plus the Global wildcard.
func SupportsCountry(list []string, country string) bool {
	for _, entry := range list {
		if Normalize(entry) == Global {
			return true
		}
	}
	return ContainsCountry(list, country)
}

// InGCC reports whether the country belongs to the regional Gulf bloc.
func InGCC(country string) bool {
	_, ok := gcc[Normalize(country)]
	return ok
}
