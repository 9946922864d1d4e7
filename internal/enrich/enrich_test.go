package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imsgstats/imsgstats/internal/model"
)

func spotifyServer(t *testing.T, tokenCalls *int32, expiresIn int) *httptest.Server {
	t.Helper()
	artists := map[string][]string{
		"aaa": {"Phoebe", "Lucy"},
		"bbb": {"Lucy"},
		"ccc": {"Julien"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		id, secret, ok := r.BasicAuth()
		if r.Method != http.MethodPost || !ok || id != "id" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "bearer", "expires_in": expiresIn})
	})
	mux.HandleFunc("/v1/tracks/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		names, ok := artists[strings.TrimPrefix(r.URL.Path, "/v1/tracks/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		type artist struct {
			Name string `json:"name"`
		}
		body := struct {
			Artists []artist `json:"artists"`
		}{}
		for _, n := range names {
			body.Artists = append(body.Artists, artist{Name: n})
		}
		_ = json.NewEncoder(w).Encode(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSpotifyArtistCounts(t *testing.T) {
	var calls int32
	srv := spotifyServer(t, &calls, 3600)

	sp, err := NewSpotify(SpotifyConfig{ClientID: "id", ClientSecret: "secret", AccountsURL: srv.URL, APIURL: srv.URL + "/"})
	require.NoError(t, err)

	counts, err := sp.ArtistCounts(context.Background(), []string{
		"https://open.spotify.com/track/aaa",
		"https://open.spotify.com/track/aaa",
		"https://open.spotify.com/album/zzz",
		"https://open.spotify.com/track/ccc?si=1",
		"https://open.spotify.com/intl-fr/track/bbb",
		"https://open.spotify.com/track/missing",
	})
	require.NoError(t, err)
	assert.Equal(t, []model.ArtistCount{
		{Artist: "Lucy", Count: 2},
		{Artist: "Phoebe", Count: 1},
		{Artist: "Julien", Count: 1},
	}, counts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSpotifyTrackArtistsSkipped(t *testing.T) {
	var calls int32
	srv := spotifyServer(t, &calls, 3600)

	sp, err := NewSpotify(SpotifyConfig{ClientID: "id", ClientSecret: "wrong", AccountsURL: srv.URL, APIURL: srv.URL})
	require.NoError(t, err)

	res := sp.TrackArtists(context.Background(), "https://open.spotify.com/track/aaa")
	assert.False(t, res.IsOk())
	assert.Equal(t, "token request failed: status 401", res.Reason)

	res = sp.TrackArtists(context.Background(), "https://example.com")
	assert.False(t, res.IsOk())
	assert.Equal(t, "not a track link", res.Reason)
}

func TestSpotifyRefreshesExpiredToken(t *testing.T) {
	var calls int32
	// tokens expiring inside the oauth2 expiry margin are fetched again on every request
	srv := spotifyServer(t, &calls, 1)

	sp, err := NewSpotify(SpotifyConfig{ClientID: "id", ClientSecret: "secret", AccountsURL: srv.URL, APIURL: srv.URL})
	require.NoError(t, err)

	for _, link := range []string{"https://open.spotify.com/track/aaa", "https://open.spotify.com/track/bbb"} {
		res := sp.TrackArtists(context.Background(), link)
		require.True(t, res.IsOk(), res.Reason)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	res := sp.TrackArtists(context.Background(), "https://open.spotify.com/track/missing")
	assert.False(t, res.IsOk())
	assert.NotEmpty(t, res.Reason)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNewSpotifyRequiresCredentials(t *testing.T) {
	_, err := NewSpotify(SpotifyConfig{ClientID: "id"})
	assert.Error(t, err)
}

func TestYouTubeTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/videos", r.URL.Path)
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))
		if r.URL.Query().Get("key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.URL.Query().Get("id") {
		case "vid1":
			_, _ = w.Write([]byte(`{"items":[{"snippet":{"title":"First Video"}}]}`))
		case "vid2":
			_, _ = w.Write([]byte(`{"items":[{"snippet":{"title":"Second"}}]}`))
		default:
			_, _ = w.Write([]byte(`{"items":[]}`))
		}
	}))
	defer srv.Close()

	yt, err := NewYouTube(YouTubeConfig{APIKey: "k", APIURL: srv.URL})
	require.NoError(t, err)

	titles, err := yt.Titles(context.Background(), []string{
		"https://www.youtube.com/watch?v=vid1",
		"https://youtu.be/vid2",
		"https://youtu.be/gone",
		"https://www.youtube.com/@somechannel",
	})
	require.NoError(t, err)
	assert.Equal(t, []model.VideoTitle{
		{Link: "https://www.youtube.com/watch?v=vid1", Title: "First Video"},
		{Link: "https://youtu.be/vid2", Title: "Second"},
	}, titles)

	res := yt.VideoTitle(context.Background(), "https://youtu.be/gone")
	assert.False(t, res.IsOk())
	assert.Equal(t, "video not found", res.Reason)
}

func TestYouTubeNon200IsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	yt, err := NewYouTube(YouTubeConfig{APIKey: "k", APIURL: srv.URL})
	require.NoError(t, err)

	res := yt.VideoTitle(context.Background(), "https://youtu.be/vid1")
	assert.False(t, res.IsOk())
	assert.Contains(t, res.Reason, "status 429")
}

func TestYouTubeCanceled(t *testing.T) {
	yt, err := NewYouTube(YouTubeConfig{APIKey: "k", APIURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = yt.Titles(ctx, []string{"https://youtu.be/vid1"})
	assert.ErrorIs(t, err, context.Canceled)
}
