package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheretolive/wheretolive/internal/api/handler"
	"github.com/wheretolive/wheretolive/internal/api/models"
	"github.com/wheretolive/wheretolive/internal/directory"
)

func newCountriesHandler(t *testing.T, datasetPath string) *handler.CountriesHandler {
	t.Helper()
	dir := directory.NewService(directory.ServiceConfig{DatasetPath: datasetPath, Logger: zerolog.Nop()})
	return handler.NewCountriesHandler(dir, zerolog.Nop())
}

func TestCountriesList_ReturnsResolvedEntries(t *testing.T) {
	path := writeDataset(t, "portugal,800,81.2", "atlantis,1,1", "hong kong,2200,70.1")
	h := newCountriesHandler(t, path)

	req := httptest.NewRequest(http.MethodGet, "/v1/countries", http.NoBody)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var dir models.CountryDirectory
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dir))
	assert.Equal(t, 2, dir.Count)

	codes := make(map[string]string, len(dir.Items))
	for _, e := range dir.Items {
		codes[e.Country] = e.Code
	}
	assert.Equal(t, "PRT", codes["portugal"])
	assert.Equal(t, "HKG", codes["hong kong"])
	assert.NotContains(t, codes, "atlantis")
}

func TestCountriesList_AllIncludesUnresolved(t *testing.T) {
	path := writeDataset(t, "portugal,800,81.2", "atlantis,1,1")
	h := newCountriesHandler(t, path)

	req := httptest.NewRequest(http.MethodGet, "/v1/countries?all=true", http.NoBody)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var dir models.CountryDirectory
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dir))
	assert.Equal(t, 2, dir.Count)

	var unresolved *directory.Entry
	for i := range dir.Items {
		if dir.Items[i].Country == "atlantis" {
			unresolved = &dir.Items[i]
		}
	}
	require.NotNil(t, unresolved)
	assert.Equal(t, directory.CodeUnresolved, unresolved.Code)
	assert.False(t, unresolved.HasData)
}

func TestCountriesList_DatasetFailureIsInternalError(t *testing.T) {
	h := newCountriesHandler(t, filepath.Join(t.TempDir(), "missing.csv"))

	req := httptest.NewRequest(http.MethodGet, "/v1/countries", http.NoBody)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "dataset could not be loaded")
}
