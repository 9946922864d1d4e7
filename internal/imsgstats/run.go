package imsgstats

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/pkg/util"
)

// Run executes the stages in order. Enrichment and activities are optional and
// skipped with a reason when not configured.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	sum := &Summary{}

	ext, err := s.Extract(ctx, opts.Force)
	if err != nil {
		return nil, err
	}
	sum.Extract = ext

	msgs, err := s.Clean(ctx)
	if err != nil {
		return nil, err
	}
	sum.Messages = len(msgs)

	if _, err := s.report(ctx, msgs); err != nil {
		return nil, err
	}
	if sum.Links, err = s.links(ctx, msgs); err != nil {
		return nil, err
	}

	if opts.Enrich {
		ec := s.conf.GetEnrich()
		if ec.Spotify.ClientID == "" || ec.Spotify.ClientSecret == "" {
			s.skip(sum, "enrich spotify", "no client credentials")
		} else if sum.Artists, err = s.EnrichSpotify(ctx); err != nil {
			return nil, err
		}
		if ec.YouTube.APIKey == "" {
			s.skip(sum, "enrich youtube", "no api key")
		} else if sum.Titles, err = s.EnrichYouTube(ctx); err != nil {
			return nil, err
		}
	}

	if opts.Activities {
		if input := s.conf.GetActivities().Input; !util.FileExists(input) {
			s.skip(sum, "activities", "no export at "+input)
		} else {
			runs, err := s.Activities(ctx)
			if err != nil {
				return nil, err
			}
			sum.Activities = len(runs)
		}
	}

	log.Info().Int("messages", sum.Messages).Int("skipped_stages", len(sum.Skipped)).Msg("run finished")
	return sum, nil
}
