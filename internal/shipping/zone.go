package shipping

import (
	"strings"

	"github.com/noah-isme/ishtar-commerce/internal/geo"
)

const (
	// ZoneGCC is returned for Gulf countries that no configured zone lists.
	ZoneGCC = "GCC_MAIN"
	// ZoneGlobal is the catch-all zone code.
	ZoneGlobal = "GLOBAL"
)

// Zone is a named shipping-rate region. A zone with Cities only matches those
// cities inside its countries; a zone without Cities covers the whole country.
type Zone struct {
	Code      string   `yaml:"code" json:"code" validate:"required"`
	Name      string   `yaml:"name" json:"name"`
	Countries []string `yaml:"countries" json:"countries" validate:"required,min=1"`
	Cities    []string `yaml:"cities,omitempty" json:"cities,omitempty"`
}

// HasCities reports whether the zone is restricted to specific cities.
func (z Zone) HasCities() bool {
	return len(z.Cities) > 0
}

func (z Zone) matchesCity(city string) bool {
	needle := strings.ToLower(strings.TrimSpace(city))
	if needle == "" {
		return false
	}
	for _, c := range z.Cities {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && strings.Contains(needle, c) {
			return true
		}
	}
	return false
}

// ResolveZone maps a country and city to a zone code. The most specific
// city zone wins, then the country-wide zone, then the Gulf bloc, then GLOBAL.
// Zones are scanned in slice order so the result is deterministic.
func ResolveZone(zones []Zone, country, city string) string {
	for _, z := range zones {
		if z.HasCities() && geo.ContainsCountry(z.Countries, country) && z.matchesCity(city) {
			return z.Code
		}
	}
	for _, z := range zones {
		if !z.HasCities() && geo.ContainsCountry(z.Countries, country) {
			return z.Code
		}
	}
	if geo.InGCC(country) {
		return ZoneGCC
	}
	return ZoneGlobal
}
