package enrich

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/links"
	"github.com/imsgstats/imsgstats/internal/model"
)

const DefaultYouTubeAPIURL = "https://www.googleapis.com"

type YouTubeConfig struct {
	APIKey  string
	APIURL  string
	Timeout time.Duration
}

// YouTube resolves video titles through the Data API.
type YouTube struct {
	conf   YouTubeConfig
	client *http.Client
}

func NewYouTube(conf YouTubeConfig) (*YouTube, error) {
	if conf.APIKey == "" {
		return nil, errors.InvalidArg("youtube api key")
	}
	if conf.APIURL == "" {
		conf.APIURL = DefaultYouTubeAPIURL
	}
	conf.APIURL = strings.TrimRight(conf.APIURL, "/")
	return &YouTube{conf: conf, client: newHTTPClient(conf.Timeout)}, nil
}

// VideoTitle returns the title of the video a link points to, or why it was skipped.
func (y *YouTube) VideoTitle(ctx context.Context, link string) model.Result[string] {
	id, ok := links.YouTubeVideoID(link)
	if !ok {
		return model.Skipped[string]("no video id")
	}

	q := url.Values{"part": {"snippet"}, "id": {id}, "key": {y.conf.APIKey}}
	req, err := http.NewRequest(http.MethodGet, y.conf.APIURL+"/youtube/v3/videos?"+q.Encode(), nil)
	if err != nil {
		return model.Skipped[string](err.Error())
	}

	var resp struct {
		Items []struct {
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := doJSON(ctx, y.client, req, &resp); err != nil {
		return model.Skipped[string](err.Error())
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet.Title == "" {
		return model.Skipped[string]("video not found")
	}
	return model.Ok(resp.Items[0].Snippet.Title)
}

// Titles resolves every link in order, skipping the ones without a title.
func (y *YouTube) Titles(ctx context.Context, texts []string) ([]model.VideoTitle, error) {
	titles := make([]model.VideoTitle, 0)
	for _, link := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := y.VideoTitle(ctx, link)
		if !res.IsOk() {
			log.Debug().Str("link", link).Str("reason", res.Reason).Msg("youtube lookup skipped")
			continue
		}
		titles = append(titles, model.VideoTitle{Link: link, Title: res.Value})
	}
	log.Info().Int("links", len(texts)).Int("titles", len(titles)).Msg("youtube titles resolved")
	return titles, nil
}
