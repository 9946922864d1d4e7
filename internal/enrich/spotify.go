package enrich

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/links"
	"github.com/imsgstats/imsgstats/internal/model"
)

const (
	DefaultSpotifyAccountsURL = "https://accounts.spotify.com"
	DefaultSpotifyAPIURL      = "https://api.spotify.com"
)

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	AccountsURL  string
	APIURL       string
	Timeout      time.Duration
}

// Spotify looks up track artists with a client-credentials token.
// The token is fetched on first use and refreshed when it expires.
type Spotify struct {
	client *spotify.Client
}

func NewSpotify(conf SpotifyConfig) (*Spotify, error) {
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return nil, errors.InvalidArg("spotify client id/secret")
	}
	if conf.AccountsURL == "" {
		conf.AccountsURL = DefaultSpotifyAccountsURL
	}
	if conf.APIURL == "" {
		conf.APIURL = DefaultSpotifyAPIURL
	}

	creds := &clientcredentials.Config{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		TokenURL:     strings.TrimRight(conf.AccountsURL, "/") + "/api/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	base := newHTTPClient(conf.Timeout)
	httpClient := creds.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	httpClient.Timeout = base.Timeout

	client := spotify.New(httpClient, spotify.WithBaseURL(strings.TrimRight(conf.APIURL, "/")+"/v1/"))
	return &Spotify{client: client}, nil
}

// TrackArtists returns the artist names of a track, or why it was skipped.
func (s *Spotify) TrackArtists(ctx context.Context, link string) model.Result[[]string] {
	id, ok := links.SpotifyTrackID(link)
	if !ok {
		return model.Skipped[[]string]("not a track link")
	}

	track, err := s.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return model.Skipped[[]string](skipReason(err))
	}
	names := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		names = append(names, a.Name)
	}
	return model.Ok(names)
}

func skipReason(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return fmt.Sprintf("token request failed: status %d", re.Response.StatusCode)
	}
	return err.Error()
}

// ArtistCounts looks up every unique track link once and counts artists, most
// frequent first, ties by first occurrence. Failed lookups are logged and skipped.
func (s *Spotify) ArtistCounts(ctx context.Context, texts []string) ([]model.ArtistCount, error) {
	tracks := make([]string, 0)
	for _, t := range links.Unique(texts) {
		if _, ok := links.SpotifyTrackID(t); ok {
			tracks = append(tracks, t)
		}
	}
	log.Info().Int("tracks", len(tracks)).Msg("looking up spotify tracks")

	index := make(map[string]int)
	counts := make([]model.ArtistCount, 0)
	for _, link := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := s.TrackArtists(ctx, link)
		if !res.IsOk() {
			log.Warn().Str("link", link).Str("reason", res.Reason).Msg("spotify lookup skipped")
			continue
		}
		for _, name := range res.Value {
			if i, ok := index[name]; ok {
				counts[i].Count++
				continue
			}
			index[name] = len(counts)
			counts = append(counts, model.ArtistCount{Artist: name, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}
