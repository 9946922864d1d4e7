package model

import "time"

// SearchRequest is one full-text query over the joined messages.
// Start and End are inclusive; zero values leave that side open.
// Person matches the grouping first name; several names are comma separated.
type SearchRequest struct {
	Query     string    `json:"query"`
	Person    string    `json:"person"`
	Direction string    `json:"direction"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}

// Clone returns a shallow copy so callers can normalize fields without touching the original.
func (r *SearchRequest) Clone() *SearchRequest {
	if r == nil {
		return nil
	}
	copy := *r
	return &copy
}

// SearchHit is a matching message and its highlighted fragment.
type SearchHit struct {
	Message *Message `json:"message"`
	Snippet string   `json:"snippet"`
	Score   float64  `json:"score"`
}

// SearchResponse collects the hits of one request. Hits are ordered by score.
type SearchResponse struct {
	Total      int                `json:"total"`
	Hits       []*SearchHit       `json:"hits"`
	DurationMs int64              `json:"duration_ms"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	Query      string             `json:"query"`
	Index      *SearchIndexStatus `json:"index_status,omitempty"`
}

// SearchIndexStatus describes the on-disk index a response was served from.
type SearchIndexStatus struct {
	Ready       bool      `json:"ready"`
	Rebuilt     bool      `json:"rebuilt"`
	Documents   int       `json:"documents"`
	Fingerprint string    `json:"fingerprint"`
	LastBuilt   time.Time `json:"last_built"`
}
