package models

// RecommendationResponse is the JSON API shape of a scoring result.
type RecommendationResponse struct {
	GeneratedAt Timestamp           `json:"generatedAt"`
	Results     []RecommendedCountry `json:"results"`
}

// RecommendedCountry is one ranked country with its normalized scores.
type RecommendedCountry struct {
	Rank            int           `json:"rank"`
	Country         string        `json:"country"`
	SimilarityScore float64       `json:"similarityScore"`
	MatchPercent    int           `json:"matchPercent"`
	Factors         []FactorScore `json:"factors"`
}

// FactorScore is one per-factor match score in fixed display order.
type FactorScore struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	Percent int     `json:"percent"`
}
