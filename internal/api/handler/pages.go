// Package handler provides HTTP handlers for the WhereToLive pages and API.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wheretolive/wheretolive/internal/api/middleware"
	"github.com/wheretolive/wheretolive/internal/directory"
	"github.com/wheretolive/wheretolive/internal/recommend"
	"github.com/wheretolive/wheretolive/internal/web"
)

// PagesHandler serves the HTML pages: the preference form and the about page.
type PagesHandler struct {
	renderer  *web.Renderer
	provider  recommend.Provider
	directory *directory.Service
	metrics   *middleware.ProviderMetrics
	log       zerolog.Logger
}

// NewPagesHandler creates a new PagesHandler. metrics may be nil when
// telemetry is disabled.
func NewPagesHandler(renderer *web.Renderer, provider recommend.Provider, dir *directory.Service, metrics *middleware.ProviderMetrics, log zerolog.Logger) *PagesHandler {
	return &PagesHandler{
		renderer:  renderer,
		provider:  provider,
		directory: dir,
		metrics:   metrics,
		log:       log,
	}
}

// Home handles GET / - the preference form in its initial state.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHTML(w, r, "index", web.NewIndexData())
}

// SubmitPreferences handles POST / - one synchronous call to the scoring
// service followed by a full page re-render. Failures are terminal for the
// submission; the user retries with a new one.
func (h *PagesHandler) SubmitPreferences(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := web.NewIndexData()
		data.Submitted = true
		data.Error = "Could not read the submitted form. Please try again."
		h.renderHTML(w, r, "index", data)
		return
	}

	form := parseFormValues(r)
	prefs := form.preferences()

	data := web.NewIndexData()
	data.Form = form.FormValues
	data.Submitted = true

	matches, err := recommendWithMetrics(r, h.provider, h.metrics, prefs)
	if err != nil {
		data.Error, data.RawPayload = userFacingError(err)
		h.log.Warn().
			Str("request_id", middleware.GetRequestID(r.Context())).
			Err(err).
			Msg("recommendation request failed")
		h.renderHTML(w, r, "index", data)
		return
	}

	if len(matches) == 0 {
		data.NoMatch = true
	} else {
		data.Matches = web.NewMatchViews(matches)
	}
	h.renderHTML(w, r, "index", data)
}

// About handles GET /about - project description plus the dataset coverage
// choropleth. A dataset-load failure degrades to an empty map and a visible
// error instead of failing the page.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	data := web.AboutData{}

	entries, err := h.directory.Build()
	if err != nil {
		h.log.Error().
			Str("request_id", middleware.GetRequestID(r.Context())).
			Err(err).
			Msg("country directory build failed")
		data.Error = fmt.Sprintf("Dataset file %q could not be loaded. Please check the file path.", h.directory.DatasetPath())
	} else {
		data.Countries = directory.Resolved(entries)
	}

	h.renderHTML(w, r, "about", data)
}

func (h *PagesHandler) renderHTML(w http.ResponseWriter, r *http.Request, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page, data); err != nil {
		h.log.Error().
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("page", page).
			Err(err).
			Msg("page render failed")
	}
}

// parsedForm wraps the display form state with the typed fields needed to
// build the outbound request.
type parsedForm struct {
	web.FormValues
	continent *recommend.Continent
}

// parseFormValues reads the preference form. Out-of-range values a browser
// could not produce through the sliders are clamped rather than rejected.
func parseFormValues(r *http.Request) parsedForm {
	form := parsedForm{FormValues: web.DefaultFormValues()}

	switch c := recommend.Climate(r.PostFormValue("climate")); c {
	case recommend.ClimateCold, recommend.ClimateMild, recommend.ClimateHot:
		form.Climate = string(c)
	}

	form.ClimateImportance = importanceValue(r, "climate_importance")
	form.CostImportance = importanceValue(r, "cost_of_living_importance")
	form.HealthcareImportance = importanceValue(r, "healthcare_importance")
	form.SafetyImportance = importanceValue(r, "safety_importance")
	form.InternetImportance = importanceValue(r, "internet_speed_importance")

	for _, c := range recommend.Continents() {
		if string(c) == r.PostFormValue("continent") {
			form.Continent = string(c)
			continent := c
			form.continent = &continent
			break
		}
	}

	if budget, err := strconv.ParseFloat(r.PostFormValue("max_monthly_budget"), 64); err == nil && budget > 0 {
		form.Budget = budget
	}

	return form
}

func (f parsedForm) preferences() recommend.Preferences {
	return recommend.Preferences{
		ClimatePreference:       recommend.Climate(f.Climate),
		ClimateImportance:       f.ClimateImportance,
		CostOfLivingImportance:  f.CostImportance,
		HealthcareImportance:    f.HealthcareImportance,
		SafetyImportance:        f.SafetyImportance,
		InternetSpeedImportance: f.InternetImportance,
		ContinentPreference:     f.continent,
		MaxMonthlyBudget:        recommend.NormalizeBudget(f.Budget),
	}
}

func importanceValue(r *http.Request, field string) int {
	v, err := strconv.Atoi(r.PostFormValue(field))
	if err != nil {
		return 5
	}
	return recommend.ClampImportance(v)
}

// userFacingError converts a provider error into the message rendered on the
// form page, plus the raw payload for malformed responses.
func userFacingError(err error) (msg, raw string) {
	var provErr *recommend.Error
	if errors.As(err, &provErr) {
		switch {
		case errors.Is(err, recommend.ErrCannotConnect):
			return "Connection error: Unable to connect to the recommendation service. Please check your internet connection.", ""
		case errors.Is(err, recommend.ErrTimeout):
			return "Timeout error: The request to the recommendation service took too long. Please try again later.", ""
		case errors.Is(err, recommend.ErrBadStatus):
			code := strings.TrimPrefix(provErr.Code, "HTTP_")
			return fmt.Sprintf("HTTP error: Received a %s status code from the recommendation service.", code), ""
		case errors.Is(err, recommend.ErrMalformedResponse):
			return "Received an unexpected response from the server.", provErr.Raw
		}
	}
	return fmt.Sprintf("Network error: An unexpected error occurred. (%v)", err), ""
}
