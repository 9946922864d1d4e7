package imsgstats

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/activity"
	"github.com/imsgstats/imsgstats/internal/enrich"
	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/internal/textstats"
)

// EnrichSpotify counts the artists of the shared Spotify tracks.
func (s *Service) EnrichSpotify(ctx context.Context) ([]model.ArtistCount, error) {
	ec := s.conf.GetEnrich()
	sp, err := enrich.NewSpotify(enrich.SpotifyConfig{
		ClientID:     ec.Spotify.ClientID,
		ClientSecret: ec.Spotify.ClientSecret,
		AccountsURL:  ec.Spotify.AccountsURL,
		APIURL:       ec.Spotify.APIURL,
		Timeout:      ec.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	texts, err := readColumn(s.path(SpotifyLinkedFile), "text")
	if err != nil {
		return nil, err
	}

	counts, err := sp.ArtistCounts(ctx, texts)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Artist, strconv.Itoa(c.Count)})
	}
	if err := writeCSV(s.path(SpotifyArtistsFile), []string{"artist", "count"}, rows); err != nil {
		return nil, err
	}
	log.Info().Int("artists", len(counts)).Msg("spotify artists written")
	return counts, nil
}

// EnrichYouTube resolves the shared video titles and counts their words.
func (s *Service) EnrichYouTube(ctx context.Context) ([]model.VideoTitle, error) {
	ec := s.conf.GetEnrich()
	yt, err := enrich.NewYouTube(enrich.YouTubeConfig{
		APIKey:  ec.YouTube.APIKey,
		APIURL:  ec.YouTube.APIURL,
		Timeout: ec.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	texts, err := readColumn(s.path(YouTubeLinkedFile), "text")
	if err != nil {
		return nil, err
	}

	titles, err := yt.Titles(ctx, texts)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, []string{t.Link, t.Title})
	}
	if err := writeCSV(s.path(YouTubeTitlesFile), []string{"link", "title"}, rows); err != nil {
		return nil, err
	}
	if _, err := s.writeTitleCounts(titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// TitleCounts recounts the words of an existing titles table.
func (s *Service) TitleCounts(ctx context.Context) ([]model.WordCount, error) {
	cols, err := readColumns(s.path(YouTubeTitlesFile), "link", "title")
	if err != nil {
		return nil, err
	}
	titles := make([]model.VideoTitle, 0, len(cols[0]))
	for i := range cols[0] {
		titles = append(titles, model.VideoTitle{Link: cols[0][i], Title: cols[1][i]})
	}
	return s.writeTitleCounts(titles)
}

func (s *Service) writeTitleCounts(titles []model.VideoTitle) ([]model.WordCount, error) {
	sw, err := s.stopWords()
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(titles))
	for _, t := range titles {
		texts = append(texts, t.Title)
	}
	counts := textstats.NewWordCounter(sw.For(false)).MostCommon(texts, defaultTitleCountsLimit)

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Word, strconv.Itoa(c.Count)})
	}
	if err := writeCSV(s.path(YouTubeTitleCountsFile), []string{"word", "count"}, rows); err != nil {
		return nil, err
	}
	log.Info().Int("titles", len(titles)).Int("words", len(counts)).Msg("youtube title counts written")
	return counts, nil
}

// Activities cleans the activity export into the runs table.
func (s *Service) Activities(ctx context.Context) ([]*model.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runs, err := activity.Load(s.conf.GetActivities().Input, s.conf.GetLocation())
	if err != nil {
		return nil, err
	}
	if err := activity.Write(s.path(ActivitiesCleanedFile), runs); err != nil {
		return nil, err
	}
	log.Info().Int("runs", len(runs)).Msg("activities written")
	return runs, nil
}
