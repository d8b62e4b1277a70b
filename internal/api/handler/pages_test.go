package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheretolive/wheretolive/internal/api/handler"
	"github.com/wheretolive/wheretolive/internal/directory"
	"github.com/wheretolive/wheretolive/internal/recommend"
	"github.com/wheretolive/wheretolive/internal/web"
)

// stubProvider returns canned matches or a canned error.
type stubProvider struct {
	matches  []recommend.CountryMatch
	err      error
	gotPrefs *recommend.Preferences
}

func (s *stubProvider) Recommend(_ context.Context, prefs recommend.Preferences) ([]recommend.CountryMatch, error) {
	s.gotPrefs = &prefs
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func (s *stubProvider) Name() string { return "stub" }

func writeDataset(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	content := "country,average_monthly_cost_$,safety_index\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newPagesHandler(t *testing.T, provider recommend.Provider, datasetPath string) *handler.PagesHandler {
	t.Helper()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	dir := directory.NewService(directory.ServiceConfig{DatasetPath: datasetPath, Logger: zerolog.Nop()})
	return handler.NewPagesHandler(renderer, provider, dir, nil, zerolog.Nop())
}

func submitForm(t *testing.T, h *handler.PagesHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.SubmitPreferences(rec, req)
	return rec
}

func defaultForm() url.Values {
	return url.Values{
		"climate":                   {"mild"},
		"climate_importance":        {"5"},
		"cost_of_living_importance": {"5"},
		"healthcare_importance":     {"5"},
		"safety_importance":         {"5"},
		"internet_speed_importance": {"5"},
		"continent":                 {""},
		"max_monthly_budget":        {"0"},
	}
}

func TestHome_RendersForm(t *testing.T) {
	h := newPagesHandler(t, &stubProvider{}, "missing.csv")

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	h.Home(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Find Your Dream Country to Live!")
	assert.NotContains(t, rec.Body.String(), "Top Matching Countries")
}

func TestSubmitPreferences_RendersRankedResults(t *testing.T) {
	provider := &stubProvider{
		matches: []recommend.CountryMatch{
			{
				Country:    "portugal",
				Similarity: 0.92,
				Factors: map[recommend.FactorKey]recommend.Score{
					recommend.FactorCostOfLiving: 0.8,
				},
			},
			{Country: "spain", Similarity: 0.87},
		},
	}
	h := newPagesHandler(t, provider, "missing.csv")

	rec := submitForm(t, h, defaultForm())

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "#1 Portugal - Overall Match: 92%")
	assert.Contains(t, body, "💰 Cost of Living: 80%")
	assert.Equal(t, 1, strings.Count(body, "<details open>"))
	assert.Equal(t, 2, strings.Count(body, "<details"))

	require.NotNil(t, provider.gotPrefs)
	assert.Equal(t, recommend.ClimateMild, provider.gotPrefs.ClimatePreference)
	assert.Nil(t, provider.gotPrefs.ContinentPreference)
	assert.Nil(t, provider.gotPrefs.MaxMonthlyBudget)
}

func TestSubmitPreferences_ClampsAndNormalizes(t *testing.T) {
	provider := &stubProvider{}
	h := newPagesHandler(t, provider, "missing.csv")

	form := defaultForm()
	form.Set("climate_importance", "42")
	form.Set("safety_importance", "-3")
	form.Set("continent", "EU")
	form.Set("max_monthly_budget", "1500")
	submitForm(t, h, form)

	require.NotNil(t, provider.gotPrefs)
	assert.Equal(t, 10, provider.gotPrefs.ClimateImportance)
	assert.Equal(t, 0, provider.gotPrefs.SafetyImportance)
	require.NotNil(t, provider.gotPrefs.ContinentPreference)
	assert.Equal(t, recommend.ContinentEurope, *provider.gotPrefs.ContinentPreference)
	require.NotNil(t, provider.gotPrefs.MaxMonthlyBudget)
	assert.Equal(t, 1500.0, *provider.gotPrefs.MaxMonthlyBudget)
}

func TestSubmitPreferences_EmptyResultIsNoMatch(t *testing.T) {
	h := newPagesHandler(t, &stubProvider{matches: []recommend.CountryMatch{}}, "missing.csv")

	rec := submitForm(t, h, defaultForm())

	body := rec.Body.String()
	assert.Contains(t, body, "No countries found matching your criteria")
	assert.NotContains(t, body, "<details")
}

func TestSubmitPreferences_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err: &recommend.Error{
				Provider: "stub", Code: "TIMEOUT",
				Message: "took too long", Err: recommend.ErrTimeout,
			},
			want: "Timeout error: The request to the recommendation service took too long.",
		},
		{
			name: "cannot connect",
			err: &recommend.Error{
				Provider: "stub", Code: "CONNECT_FAILED",
				Message: "connect failed", Err: recommend.ErrCannotConnect,
			},
			want: "Connection error: Unable to connect to the recommendation service.",
		},
		{
			name: "bad status",
			err: &recommend.Error{
				Provider: "stub", Code: "HTTP_502",
				Message: "bad status", Err: recommend.ErrBadStatus,
			},
			want: "HTTP error: Received a 502 status code from the recommendation service.",
		},
		{
			name: "generic failure",
			err: &recommend.Error{
				Provider: "stub", Code: "REQUEST_FAILED",
				Message: "network gremlins", Err: recommend.ErrUnavailable,
			},
			want: "Network error: An unexpected error occurred.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPagesHandler(t, &stubProvider{err: tt.err}, "missing.csv")

			rec := submitForm(t, h, defaultForm())

			body := rec.Body.String()
			assert.Contains(t, body, tt.want)
			assert.NotContains(t, body, "<details")
		})
	}
}

func TestSubmitPreferences_MalformedResponseDumpsPayload(t *testing.T) {
	err := &recommend.Error{
		Provider: "stub",
		Code:     "MALFORMED",
		Message:  "unexpected response",
		Raw:      `{"detail":"internal error"}`,
		Err:      recommend.ErrMalformedResponse,
	}
	h := newPagesHandler(t, &stubProvider{err: err}, "missing.csv")

	rec := submitForm(t, h, defaultForm())

	body := rec.Body.String()
	assert.Contains(t, body, "Received an unexpected response from the server.")
	assert.Contains(t, body, "internal error")
}

func TestAbout_RendersResolvedDirectory(t *testing.T) {
	path := writeDataset(t, "portugal,800,81.2", "atlantis,1,1", "spain,900,78.9")
	h := newPagesHandler(t, &stubProvider{}, path)

	req := httptest.NewRequest(http.MethodGet, "/about", http.NoBody)
	rec := httptest.NewRecorder()
	h.About(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "PRT")
	assert.Contains(t, body, "ESP")
	// Unresolved entries never reach the map
	assert.NotContains(t, body, "atlantis")
	assert.Contains(t, body, "Our dataset includes 2 countries")
}

func TestAbout_DatasetFailureDegrades(t *testing.T) {
	h := newPagesHandler(t, &stubProvider{}, filepath.Join(t.TempDir(), "missing.csv"))

	req := httptest.NewRequest(http.MethodGet, "/about", http.NoBody)
	rec := httptest.NewRecorder()
	h.About(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "could not be loaded")
	assert.NotContains(t, body, "Our dataset includes")
}
