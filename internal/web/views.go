package web

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wheretolive/wheretolive/internal/directory"
	"github.com/wheretolive/wheretolive/internal/recommend"
)

// FormValues carries the preference form state so the page re-renders with
// the user's last submission intact.
type FormValues struct {
	Climate              string
	ClimateImportance    int
	CostImportance       int
	HealthcareImportance int
	SafetyImportance     int
	InternetImportance   int
	Continent            string
	Budget               float64
}

// DefaultFormValues returns the initial form state: every importance at the
// slider midpoint, mild climate, no continent filter, no budget.
func DefaultFormValues() FormValues {
	return FormValues{
		Climate:              string(recommend.ClimateMild),
		ClimateImportance:    5,
		CostImportance:       5,
		HealthcareImportance: 5,
		SafetyImportance:     5,
		InternetImportance:   5,
	}
}

// ContinentOption is one entry of the continent select.
type ContinentOption struct {
	Label string
	Value string
}

// ContinentOptions lists the continent select entries in display order,
// starting with "Any" which maps to no filter.
func ContinentOptions() []ContinentOption {
	opts := []ContinentOption{{Label: "Any", Value: ""}}
	labels := map[recommend.Continent]string{
		recommend.ContinentAfrica:       "Africa",
		recommend.ContinentAsia:         "Asia",
		recommend.ContinentEurope:       "Europe",
		recommend.ContinentNorthAmerica: "North America",
		recommend.ContinentOceania:      "Oceania",
		recommend.ContinentSouthAmerica: "South America",
	}
	for _, c := range recommend.Continents() {
		opts = append(opts, ContinentOption{Label: labels[c], Value: string(c)})
	}
	return opts
}

// FactorBar is one per-factor match bar.
type FactorBar struct {
	Label   string
	Percent int
}

// MatchView is one ranked country expander.
type MatchView struct {
	Rank    int
	Country string
	Percent int
	Open    bool
	Factors []FactorBar
}

// NewMatchViews converts ranked matches into their display form. Country
// names are title-cased, only the top entry renders expanded, and factor
// bars follow the fixed factor order.
func NewMatchViews(matches []recommend.CountryMatch) []MatchView {
	titler := cases.Title(language.English)
	views := make([]MatchView, 0, len(matches))
	for i, m := range matches {
		factors := make([]FactorBar, 0, len(recommend.FactorOrder))
		for _, key := range recommend.FactorOrder {
			factors = append(factors, FactorBar{
				Label:   recommend.FactorLabels[key],
				Percent: m.FactorScore(key).Percent(),
			})
		}
		views = append(views, MatchView{
			Rank:    i + 1,
			Country: titler.String(m.Country),
			Percent: m.Similarity.Percent(),
			Open:    i == 0,
			Factors: factors,
		})
	}
	return views
}

// IndexData is the template data for the preference form page.
type IndexData struct {
	Form       FormValues
	Continents []ContinentOption
	Submitted  bool
	Matches    []MatchView
	NoMatch    bool
	Error      string
	RawPayload string
}

// NewIndexData returns the form page in its initial state.
func NewIndexData() IndexData {
	return IndexData{
		Form:       DefaultFormValues(),
		Continents: ContinentOptions(),
	}
}

// AboutData is the template data for the about page.
type AboutData struct {
	// Countries is the resolved directory fed to the choropleth map.
	Countries []directory.Entry
	Error     string
}
