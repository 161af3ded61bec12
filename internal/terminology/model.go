package terminology

// Coding systems served by the search endpoint.
const (
	SystemICD11 = "CIM-11"
	SystemICPC2 = "CISP-2"
)

// SearchResult is one terminology hit.
type SearchResult struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	System string `json:"system"`
}

// SearchResponse wraps results with the source that produced them: "live",
// "cache", "fallback" or "simulated".
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Source  string         `json:"source"`
}

// Result sources.
const (
	SourceLive      = "live"
	SourceCache     = "cache"
	SourceFallback  = "fallback"
	SourceSimulated = "simulated"
)
