package models

import "github.com/wheretolive/wheretolive/internal/directory"

// CountryDirectory is the resolved country directory served by the API and
// fed to the about-page choropleth.
type CountryDirectory struct {
	Items []directory.Entry `json:"items"`
	Count int               `json:"count"`
}
