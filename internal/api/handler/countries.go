package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wheretolive/wheretolive/internal/api/middleware"
	"github.com/wheretolive/wheretolive/internal/api/models"
	"github.com/wheretolive/wheretolive/internal/api/response"
	"github.com/wheretolive/wheretolive/internal/directory"
)

// CountriesHandler serves the resolved country directory.
type CountriesHandler struct {
	directory *directory.Service
	log       zerolog.Logger
}

// NewCountriesHandler creates a new CountriesHandler.
func NewCountriesHandler(dir *directory.Service, log zerolog.Logger) *CountriesHandler {
	return &CountriesHandler{directory: dir, log: log}
}

// List handles GET /v1/countries - the countries present in the scored
// dataset with their resolved ISO alpha-3 codes. Pass ?all=true to include
// entries no resolution strategy matched.
func (h *CountriesHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.directory.Build()
	if err != nil {
		h.log.Error().
			Str("request_id", middleware.GetRequestID(r.Context())).
			Err(err).
			Msg("country directory build failed")
		response.InternalError(w, r, "the country dataset could not be loaded")
		return
	}

	if r.URL.Query().Get("all") != "true" {
		entries = directory.Resolved(entries)
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, models.CountryDirectory{
		Items: entries,
		Count: len(entries),
	})
}
