package imsgstats

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/imsgstats/conf"
	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/internal/textstats"
)

// Files written under the data directory.
const (
	ContactsFile            = "contacts.csv"
	MessagesFile            = "messages.csv"
	CleanFile               = "clean_data.csv"
	TextCountsFile          = "text_counts.json"
	TextCountsNoCommonFile  = "text_counts_no_common_words.json"
	TextSummaryFile         = "text_summary.json"
	SpotifyLinkedFile       = "spotify_linked.csv"
	YouTubeLinkedFile       = "youtube_linked.csv"
	WebsitesLinkedFile      = "websites_linked.csv"
	SpotifyArtistsFile      = "spotify_artists.csv"
	YouTubeTitlesFile       = "youtube_titles.csv"
	YouTubeTitleCountsFile  = "youtube_title_counts.csv"
	ActivitiesCleanedFile   = "activities_cleaned.csv"
	sourceFingerprintFile   = ".source_fingerprint"
	defaultTitleCountsLimit = textstats.AllWordLimit
)

type Config interface {
	GetDataDir() string
	GetChatDB() string
	GetAddressBookDB() []string
	GetLocation() *time.Location
	GetReport() *conf.ReportConfig
	GetEnrich() *conf.EnrichConfig
	GetActivities() *conf.ActivitiesConfig
	GetSearch() *conf.SearchConfig
}

// Service runs the pipeline stages. Every stage reads the files of the
// previous one from the data directory, so stages can be rerun alone.
type Service struct {
	conf Config
	stop *textstats.StopWords
}

func NewService(conf Config) *Service {
	return &Service{conf: conf}
}

func (s *Service) path(name string) string {
	return filepath.Join(s.conf.GetDataDir(), name)
}

// stopWords builds the stop word sets once per service.
func (s *Service) stopWords() (*textstats.StopWords, error) {
	if s.stop != nil {
		return s.stop, nil
	}
	rc := s.conf.GetReport()
	var common []string
	if len(rc.CommonWords) > 0 {
		common = rc.CommonWords
	}
	sw, err := textstats.NewStopWords(rc.ExtraStopWords, common)
	if err != nil {
		return nil, err
	}
	s.stop = sw
	return sw, nil
}

// Summary is what a full run produced.
type Summary struct {
	Extract    *ExtractResult
	Messages   int
	Links      *LinksResult
	Artists    []model.ArtistCount
	Titles     []model.VideoTitle
	Activities int
	Skipped    map[string]string
}

// RunOptions selects the optional stages of Run.
type RunOptions struct {
	Force      bool
	Enrich     bool
	Activities bool
}

func (s *Service) skip(sum *Summary, stage, reason string) {
	if sum.Skipped == nil {
		sum.Skipped = make(map[string]string)
	}
	sum.Skipped[stage] = reason
	log.Warn().Str("stage", stage).Str("reason", reason).Msg("stage skipped")
}
