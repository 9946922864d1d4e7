package imsgstats

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/internal/textstats"
	"github.com/imsgstats/imsgstats/pkg/util"
)

type ReportResult struct {
	Reports *textstats.Reports
	Summary *model.TextSummary
}

// Report builds both text count trees and the flat summary from the clean table.
func (s *Service) Report(ctx context.Context) (*ReportResult, error) {
	msgs, err := s.cleanMessages()
	if err != nil {
		return nil, err
	}
	return s.report(ctx, msgs)
}

func (s *Service) report(ctx context.Context, msgs []*model.Message) (*ReportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sw, err := s.stopWords()
	if err != nil {
		return nil, err
	}
	rc := s.conf.GetReport()

	reports, err := textstats.BuildReports(msgs, sw, rc.WordLimit)
	if err != nil {
		return nil, err
	}
	summary := textstats.Summarize(msgs, textstats.NewWordCounter(sw.For(false)), rc.WordLimit, rc.AllWordLimit)

	outputs := []struct {
		name string
		v    any
	}{
		{TextCountsFile, reports.Base},
		{TextCountsNoCommonFile, reports.NoCommonWords},
		{TextSummaryFile, summary},
	}
	for _, o := range outputs {
		path := s.path(o.name)
		if err := util.WriteJSONFileAtomic(path, o.v, rc.Pretty); err != nil {
			return nil, errors.WriteFileFailed(path, err)
		}
	}

	log.Info().
		Int("messages", reports.Base.Value).
		Int("years", len(reports.Base.Children)).
		Int("people", len(summary.People)).
		Msg("text reports written")
	return &ReportResult{Reports: reports, Summary: summary}, nil
}
