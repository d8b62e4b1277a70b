package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/wheretolive/wheretolive/internal/api/middleware"
	"github.com/wheretolive/wheretolive/internal/api/models"
	"github.com/wheretolive/wheretolive/internal/api/response"
	"github.com/wheretolive/wheretolive/internal/recommend"
)

// RecommendationsHandler handles the JSON recommendation endpoint.
type RecommendationsHandler struct {
	provider recommend.Provider
	metrics  *middleware.ProviderMetrics
	validate *validator.Validate
	log      zerolog.Logger
}

// NewRecommendationsHandler creates a new RecommendationsHandler. metrics
// may be nil when telemetry is disabled.
func NewRecommendationsHandler(provider recommend.Provider, metrics *middleware.ProviderMetrics, log zerolog.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{
		provider: provider,
		metrics:  metrics,
		validate: validator.New(),
		log:      log,
	}
}

// Recommend handles POST /v1/recommendations - forwards the preferences to
// the scoring service and returns the ranked matches with normalized scores.
func (h *RecommendationsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var prefs recommend.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	prefs.ClimateImportance = recommend.ClampImportance(prefs.ClimateImportance)
	prefs.CostOfLivingImportance = recommend.ClampImportance(prefs.CostOfLivingImportance)
	prefs.HealthcareImportance = recommend.ClampImportance(prefs.HealthcareImportance)
	prefs.SafetyImportance = recommend.ClampImportance(prefs.SafetyImportance)
	prefs.InternetSpeedImportance = recommend.ClampImportance(prefs.InternetSpeedImportance)
	if prefs.MaxMonthlyBudget != nil {
		prefs.MaxMonthlyBudget = recommend.NormalizeBudget(*prefs.MaxMonthlyBudget)
	}

	if err := h.validate.Struct(prefs); err != nil {
		response.BadRequest(w, r, "validation failed", fieldErrors(err))
		return
	}

	matches, err := recommendWithMetrics(r, h.provider, h.metrics, prefs)
	if err != nil {
		h.log.Warn().
			Str("request_id", middleware.GetRequestID(r.Context())).
			Err(err).
			Msg("recommendation request failed")
		h.writeProviderError(w, r, err)
		return
	}

	resp := models.RecommendationResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Results:     recommendedCountries(matches),
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// writeProviderError maps the provider error taxonomy onto problem responses.
func (h *RecommendationsHandler) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrTimeout):
		response.GatewayTimeout(w, r, "the recommendation service did not respond in time")
	case errors.Is(err, recommend.ErrCannotConnect):
		response.BadGateway(w, r, "unable to connect to the recommendation service")
	case errors.Is(err, recommend.ErrBadStatus):
		var provErr *recommend.Error
		detail := "the recommendation service returned an error status"
		if errors.As(err, &provErr) {
			detail = fmt.Sprintf("the recommendation service returned status %s", strings.TrimPrefix(provErr.Code, "HTTP_"))
		}
		response.BadGateway(w, r, detail)
	case errors.Is(err, recommend.ErrMalformedResponse):
		var provErr *recommend.Error
		problem := models.NewBadGateway(middleware.GetRequestID(r.Context()), "unexpected response from the recommendation service")
		if errors.As(err, &provErr) {
			problem.Raw = provErr.Raw
		}
		response.Error(w, r, problem)
	default:
		response.BadGateway(w, r, "the recommendation service is unavailable")
	}
}

// recommendWithMetrics calls the provider and records the call duration when
// provider metrics are configured.
func recommendWithMetrics(r *http.Request, provider recommend.Provider, metrics *middleware.ProviderMetrics, prefs recommend.Preferences) ([]recommend.CountryMatch, error) {
	start := time.Now()
	matches, err := provider.Recommend(r.Context(), prefs)
	if metrics != nil {
		metrics.RecordRequest(provider.Name(), "recommend", time.Since(start), err)
	}
	return matches, err
}

// recommendedCountries converts ranked matches to their API shape with
// factor scores in fixed display order.
func recommendedCountries(matches []recommend.CountryMatch) []models.RecommendedCountry {
	results := make([]models.RecommendedCountry, 0, len(matches))
	for i, m := range matches {
		factors := make([]models.FactorScore, 0, len(recommend.FactorOrder))
		for _, key := range recommend.FactorOrder {
			score := m.FactorScore(key)
			factors = append(factors, models.FactorScore{
				Key:     string(key),
				Label:   recommend.FactorLabels[key],
				Score:   float64(score),
				Percent: score.Percent(),
			})
		}
		results = append(results, models.RecommendedCountry{
			Rank:            i + 1,
			Country:         m.Country,
			SimilarityScore: float64(m.Similarity),
			MatchPercent:    m.Similarity.Percent(),
			Factors:         factors,
		})
	}
	return results
}

// fieldErrors converts validator errors to the problem response shape.
func fieldErrors(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return out
}
