// Package recommend provides country recommendation matching against an
// external scoring service.
package recommend

import (
	"context"
	"errors"
	"math"
)

// Sentinel errors for recommendation operations.
var (
	// ErrCannotConnect indicates the recommendation service could not be reached.
	ErrCannotConnect = errors.New("cannot connect to recommendation service")
	// ErrTimeout indicates the request to the recommendation service took too long.
	ErrTimeout = errors.New("recommendation request timed out")
	// ErrBadStatus indicates the recommendation service returned a non-2xx status.
	ErrBadStatus = errors.New("recommendation service returned an error status")
	// ErrMalformedResponse indicates the response payload had an unexpected shape.
	ErrMalformedResponse = errors.New("unexpected response from recommendation service")
	// ErrUnavailable indicates a generic transport-level failure.
	ErrUnavailable = errors.New("recommendation service unavailable")
)

// Provider defines the interface for recommendation providers.
type Provider interface {
	// Recommend sends the user preferences and returns the ranked matches.
	// An empty slice is a valid result meaning no country satisfied the
	// criteria.
	Recommend(ctx context.Context, prefs Preferences) ([]CountryMatch, error)
	// Name returns the provider identifier for logging and health tracking.
	Name() string
}

// Climate is the preferred temperature band.
type Climate string

const (
	ClimateCold Climate = "cold"
	ClimateMild Climate = "mild"
	ClimateHot  Climate = "hot"
)

// Continent is an optional two-letter continent filter.
type Continent string

const (
	ContinentAfrica       Continent = "AF"
	ContinentAsia         Continent = "AS"
	ContinentEurope       Continent = "EU"
	ContinentNorthAmerica Continent = "NA"
	ContinentOceania      Continent = "OC"
	ContinentSouthAmerica Continent = "SA"
)

// Continents lists the recognized continent filters in display order.
func Continents() []Continent {
	return []Continent{
		ContinentAfrica,
		ContinentAsia,
		ContinentEurope,
		ContinentNorthAmerica,
		ContinentOceania,
		ContinentSouthAmerica,
	}
}

// Preferences is the outbound request to the recommendation service.
// Importance values are integers in [0,10]; use ClampImportance on any
// user-supplied value before constructing one.
type Preferences struct {
	ClimatePreference       Climate    `json:"climate_preference" validate:"required,oneof=cold mild hot"`
	ClimateImportance       int        `json:"climate_importance" validate:"gte=0,lte=10"`
	CostOfLivingImportance  int        `json:"cost_of_living_importance" validate:"gte=0,lte=10"`
	HealthcareImportance    int        `json:"healthcare_importance" validate:"gte=0,lte=10"`
	SafetyImportance        int        `json:"safety_importance" validate:"gte=0,lte=10"`
	InternetSpeedImportance int        `json:"internet_speed_importance" validate:"gte=0,lte=10"`
	ContinentPreference     *Continent `json:"continent_preference" validate:"omitempty,oneof=AF AS EU NA OC SA"`
	MaxMonthlyBudget        *float64   `json:"max_monthly_budget" validate:"omitempty,gt=0"`
}

// ClampImportance bounds an importance weight to the [0,10] integer range.
func ClampImportance(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// NormalizeBudget converts a zero budget to "not specified". Positive values
// pass through unchanged.
func NormalizeBudget(budget float64) *float64 {
	if budget <= 0 {
		return nil
	}
	return &budget
}

// Score is a similarity score normalized to [0,1]. Non-numeric or missing
// values from the service are normalized to zero at the parsing boundary and
// never re-checked downstream.
type Score float64

// Percent returns the score as a rounded whole percentage.
func (s Score) Percent() int {
	return int(math.Round(float64(s) * 100))
}

// FactorKey identifies one of the five scored preference factors. The keys
// mirror the column names used by the scoring service.
type FactorKey string

const (
	FactorCostOfLiving  FactorKey = "average_monthly_cost_$"
	FactorTemperature   FactorKey = "average_yearly_temperature"
	FactorInternetSpeed FactorKey = "internet_speed_mbps"
	FactorSafety        FactorKey = "safety_index"
	FactorHealthcare    FactorKey = "Healthcare Index"
)

// FactorOrder is the fixed display order for per-factor match scores.
var FactorOrder = []FactorKey{
	FactorCostOfLiving,
	FactorTemperature,
	FactorInternetSpeed,
	FactorSafety,
	FactorHealthcare,
}

// FactorLabels maps factor keys to their display labels.
var FactorLabels = map[FactorKey]string{
	FactorCostOfLiving:  "💰 Cost of Living",
	FactorTemperature:   "🌡️ Temperature",
	FactorInternetSpeed: "🌐 Internet Speed",
	FactorSafety:        "🛡️ Safety",
	FactorHealthcare:    "🏥 Healthcare",
}

// CountryMatch is one ranked entry returned by the recommendation service.
type CountryMatch struct {
	Country    string
	Similarity Score
	Factors    map[FactorKey]Score
}

// FactorScore returns the match score for the given factor, zero when the
// service omitted it.
func (m CountryMatch) FactorScore(key FactorKey) Score {
	return m.Factors[key]
}

// Error provides detailed error information from the recommendation provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code, e.g. "HTTP_503" or "TIMEOUT"
	Message  string // Human-readable error message
	Raw      string // Raw response payload, set for malformed responses
	Err      error  // Underlying sentinel error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
