package directory

import (
	"sort"
	"strings"

	"github.com/pariz/gountries"
)

// Strategy resolves a lower-cased country display name to an ISO alpha-3
// code. Strategies are tried in order; the first match wins.
type Strategy interface {
	Resolve(name string) (code string, ok bool)
}

// Resolver chains resolution strategies: the fixed override table first,
// then the ISO registry lookup. Names no strategy matches stay unresolved.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a resolver with the default strategy chain.
func NewResolver() *Resolver {
	return &Resolver{
		strategies: []Strategy{
			overrideStrategy{},
			newRegistryStrategy(),
		},
	}
}

// Resolve maps a country display name to an alpha-3 code. The second return
// value is false when no strategy matched.
func (r *Resolver) Resolve(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}
	for _, s := range r.strategies {
		if code, ok := s.Resolve(name); ok {
			return code, true
		}
	}
	return "", false
}

// overrides short-circuits historically ambiguous or multi-word names that
// the registry lookup either misses or resolves to the wrong state. Always
// has precedence over the registry.
var overrides = map[string]string{
	"united states":  "USA",
	"united kingdom": "GBR",
	"uk":             "GBR",
	"russia":         "RUS",
	"south korea":    "KOR",
	"north korea":    "PRK",
	"czech republic": "CZE",
	"ivory coast":    "CIV",
	"congo":          "COG",
	"hong kong":      "HKG",
	"taiwan":         "TWN",
	"vietnam":        "VNM",
	"venezuela":      "VEN",
}

type overrideStrategy struct{}

func (overrideStrategy) Resolve(name string) (string, bool) {
	code, ok := overrides[name]
	return code, ok
}

// registryStrategy looks names up in the bundled ISO-3166 registry: exact
// (case-insensitive) name match first, then a substring scan over the
// registry's common names with the first candidate in alphabetical order
// winning.
type registryStrategy struct {
	query *gountries.Query
	// names holds (lower-cased common name, alpha-3) pairs sorted by name
	// so the substring scan is deterministic.
	names []namedCode
}

type namedCode struct {
	name string
	code string
}

func newRegistryStrategy() *registryStrategy {
	query := gountries.New()

	all := query.FindAllCountries()
	names := make([]namedCode, 0, len(all))
	for _, c := range all {
		common := strings.ToLower(c.Name.Common)
		if common == "" {
			continue
		}
		names = append(names, namedCode{name: common, code: c.Alpha3})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].name < names[j].name })

	return &registryStrategy{query: query, names: names}
}

func (s *registryStrategy) Resolve(name string) (string, bool) {
	if country, err := s.query.FindCountryByName(name); err == nil {
		return country.Alpha3, true
	}

	// Fuzzy fallback: either side containing the other counts as a match.
	for _, nc := range s.names {
		if strings.Contains(nc.name, name) || strings.Contains(name, nc.name) {
			return nc.code, true
		}
	}

	return "", false
}
