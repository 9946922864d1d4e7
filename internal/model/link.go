package model

// DomainCount is one row of websites_linked.csv.
type DomainCount struct {
	BaseURL string `json:"base_url"`
	Count   int    `json:"count"`
}

// ArtistCount is one row of spotify_artists.csv.
type ArtistCount struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// VideoTitle is one row of youtube_titles.csv.
type VideoTitle struct {
	Link  string `json:"link"`
	Title string `json:"title"`
}
