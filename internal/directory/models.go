// Package directory builds the country directory shown on the about page:
// every country present in the scored dataset, resolved to an ISO-3166
// alpha-3 code for choropleth rendering.
package directory

// CodeUnresolved is the sentinel for entries no resolution strategy matched.
// Entries carrying it never reach the map renderer.
const CodeUnresolved = "---"

// Entry is one resolved country directory record. Built once per page
// render from the dataset file; never persisted.
type Entry struct {
	// Country is the display name exactly as it appears in the dataset.
	Country string `json:"country"`

	// Code is the resolved ISO-3166 alpha-3 code, or CodeUnresolved.
	Code string `json:"iso_alpha_3"`

	// HasData reports whether the country resolved and is present in the
	// scored dataset.
	HasData bool `json:"has_data"`
}

// Resolved returns the entries whose code resolved, preserving order.
func Resolved(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Code != CodeUnresolved {
			out = append(out, e)
		}
	}
	return out
}
