package imsgstats

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/links"
	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/internal/textstats"
	"github.com/imsgstats/imsgstats/pkg/util"
)

var textHeader = []string{"text"}

type LinksResult struct {
	Links   int
	Spotify []string
	YouTube []string
	Domains []model.DomainCount
	// Skipped counts link messages whose URL could not be parsed.
	Skipped int
}

// Links splits the links the owner sent by destination and counts their domains.
func (s *Service) Links(ctx context.Context) (*LinksResult, error) {
	msgs, err := s.cleanMessages()
	if err != nil {
		return nil, err
	}
	return s.links(ctx, msgs)
}

func (s *Service) links(ctx context.Context, msgs []*model.Message) (*LinksResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sent := links.Sent(msgs)
	linked := links.SentLinks(sent)
	texts := make([]string, 0, len(linked))
	for _, m := range linked {
		texts = append(texts, m.Text)
	}

	res := &LinksResult{
		Links:   len(linked),
		Spotify: links.SpotifyTexts(sent),
		YouTube: links.YouTubeTexts(sent),
	}
	res.Domains, res.Skipped = links.DomainCounts(texts, textstats.ReactionWords)

	if err := writeTexts(s.path(SpotifyLinkedFile), res.Spotify); err != nil {
		return nil, err
	}
	if err := writeTexts(s.path(YouTubeLinkedFile), res.YouTube); err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(res.Domains))
	for _, d := range res.Domains {
		rows = append(rows, []string{d.BaseURL, strconv.Itoa(d.Count)})
	}
	if err := writeCSV(s.path(WebsitesLinkedFile), []string{"base_url", "count"}, rows); err != nil {
		return nil, err
	}

	log.Info().
		Int("links", res.Links).
		Int("spotify", len(res.Spotify)).
		Int("youtube", len(res.YouTube)).
		Int("domains", len(res.Domains)).
		Int("unparsed", res.Skipped).
		Msg("links written")
	return res, nil
}

func writeTexts(path string, texts []string) error {
	rows := make([][]string, 0, len(texts))
	for _, t := range texts {
		rows = append(rows, []string{t})
	}
	return writeCSV(path, textHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := util.WriteCSVFileAtomic(path, header, rows, false); err != nil {
		return errors.WriteFileFailed(path, err)
	}
	return nil
}

// readColumn returns one column of a CSV written by an earlier stage.
func readColumn(path, column string) ([]string, error) {
	cols, err := readColumns(path, column)
	if err != nil {
		return nil, err
	}
	return cols[0], nil
}

func readColumns(path string, columns ...string) ([][]string, error) {
	if !util.FileExists(path) {
		return nil, errors.ErrFileNotFound(path)
	}
	header, rows, err := util.ReadCSVFile(path)
	if err != nil {
		return nil, errors.ReadFileFailed(path, err)
	}
	out := make([][]string, len(columns))
	for ci, col := range columns {
		idx := -1
		for i, h := range header {
			if h == col {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errors.ReadFileFailed(path, errors.InvalidArg("missing column "+strconv.Quote(col)))
		}
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			if idx < len(row) {
				values = append(values, row[idx])
			} else {
				values = append(values, "")
			}
		}
		out[ci] = values
	}
	return out, nil
}
