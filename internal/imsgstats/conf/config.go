package conf

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/pkg/util"
)

const EnvPrefix = "IMSGSTATS"

// Config is the full runtime configuration, loaded from file, env and flags.
type Config struct {
	DataDir       string           `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`
	ChatDB        string           `mapstructure:"chat_db" yaml:"chat_db" json:"chat_db"`
	AddressBookDB []string         `mapstructure:"address_book_db" yaml:"address_book_db" json:"address_book_db"`
	Timezone      string           `mapstructure:"timezone" yaml:"timezone" json:"timezone"`
	Report        ReportConfig     `mapstructure:"report" yaml:"report" json:"report"`
	Enrich        EnrichConfig     `mapstructure:"enrich" yaml:"enrich" json:"enrich"`
	Activities    ActivitiesConfig `mapstructure:"activities" yaml:"activities" json:"activities"`
	Search        SearchConfig     `mapstructure:"search" yaml:"search" json:"search"`

	loc *time.Location
}

type ReportConfig struct {
	WordLimit    int  `mapstructure:"word_limit" yaml:"word_limit" json:"word_limit"`
	AllWordLimit int  `mapstructure:"all_word_limit" yaml:"all_word_limit" json:"all_word_limit"`
	Pretty       bool `mapstructure:"pretty" yaml:"pretty" json:"pretty"`
	// ExtraStopWords are removed in both report variants.
	ExtraStopWords []string `mapstructure:"extra_stop_words" yaml:"extra_stop_words" json:"extra_stop_words"`
	// CommonWords are removed only in the no-common-words variant; empty means the built-in list.
	CommonWords []string `mapstructure:"common_words" yaml:"common_words" json:"common_words"`
}

type EnrichConfig struct {
	RequestTimeoutSeconds int           `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	Spotify               SpotifyConfig `mapstructure:"spotify" yaml:"spotify" json:"spotify"`
	YouTube               YouTubeConfig `mapstructure:"youtube" yaml:"youtube" json:"youtube"`
}

type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id" json:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret" json:"-"`
	AccountsURL  string `mapstructure:"accounts_url" yaml:"accounts_url" json:"accounts_url"`
	APIURL       string `mapstructure:"api_url" yaml:"api_url" json:"api_url"`
}

type YouTubeConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key" json:"-"`
	APIURL string `mapstructure:"api_url" yaml:"api_url" json:"api_url"`
}

type ActivitiesConfig struct {
	Input string `mapstructure:"input" yaml:"input" json:"input"`
}

type SearchConfig struct {
	IndexDir string `mapstructure:"index_dir" yaml:"index_dir" json:"index_dir"`
	Limit    int    `mapstructure:"limit" yaml:"limit" json:"limit"`
}

// NewViper returns a viper instance reading IMSGSTATS_* env vars on top of the defaults.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers every key so env overrides work without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("chat_db", "~/Library/Messages/chat.db")
	v.SetDefault("address_book_db", []string{"~/Library/Application Support/AddressBook/Sources/*/AddressBook-v22.abcddb"})
	v.SetDefault("timezone", "America/Los_Angeles")

	v.SetDefault("report.word_limit", 15)
	v.SetDefault("report.all_word_limit", 100)
	v.SetDefault("report.pretty", true)
	v.SetDefault("report.extra_stop_words", []string{})
	v.SetDefault("report.common_words", []string{})

	v.SetDefault("enrich.request_timeout_seconds", 10)
	v.SetDefault("enrich.spotify.client_id", "")
	v.SetDefault("enrich.spotify.client_secret", "")
	v.SetDefault("enrich.spotify.accounts_url", "https://accounts.spotify.com")
	v.SetDefault("enrich.spotify.api_url", "https://api.spotify.com")
	v.SetDefault("enrich.youtube.api_key", "")
	v.SetDefault("enrich.youtube.api_url", "https://www.googleapis.com")

	v.SetDefault("activities.input", "")
	v.SetDefault("search.index_dir", "")
	v.SetDefault("search.limit", 20)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return nil, errors.Wrap(err, "decode config", http.StatusBadRequest)
	}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Normalize expands paths, fills derived defaults and resolves the timezone.
func (c *Config) Normalize() error {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	c.DataDir = util.ExpandHome(c.DataDir)
	c.ChatDB = util.ExpandHome(c.ChatDB)
	patterns := c.AddressBookDB[:0]
	for _, p := range c.AddressBookDB {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, util.ExpandHome(p))
		}
	}
	c.AddressBookDB = patterns

	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return errors.Wrap(err, "invalid timezone "+c.Timezone, http.StatusBadRequest)
	}
	c.loc = loc

	if c.Report.WordLimit <= 0 {
		c.Report.WordLimit = 15
	}
	if c.Report.AllWordLimit <= 0 {
		c.Report.AllWordLimit = 100
	}
	if c.Enrich.RequestTimeoutSeconds <= 0 {
		c.Enrich.RequestTimeoutSeconds = 10
	}
	if c.Activities.Input == "" {
		c.Activities.Input = filepath.Join(c.DataDir, "activities.csv")
	}
	c.Activities.Input = util.ExpandHome(c.Activities.Input)
	if c.Search.IndexDir == "" {
		c.Search.IndexDir = filepath.Join(c.DataDir, "index.bleve")
	}
	c.Search.IndexDir = util.ExpandHome(c.Search.IndexDir)
	if c.Search.Limit <= 0 {
		c.Search.Limit = 20
	}
	return nil
}

func (c *Config) GetDataDir() string { return c.DataDir }

func (c *Config) GetChatDB() string { return c.ChatDB }

func (c *Config) GetAddressBookDB() []string { return c.AddressBookDB }

// GetLocation is the zone message and activity times are rendered in.
func (c *Config) GetLocation() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c *Config) GetReport() *ReportConfig { return &c.Report }

func (c *Config) GetEnrich() *EnrichConfig { return &c.Enrich }

func (c *Config) GetActivities() *ActivitiesConfig { return &c.Activities }

func (c *Config) GetSearch() *SearchConfig { return &c.Search }

func (c *EnrichConfig) Timeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Enrich.Spotify.ClientSecret != "" {
		cp.Enrich.Spotify.ClientSecret = "***"
	}
	if cp.Enrich.YouTube.APIKey != "" {
		cp.Enrich.YouTube.APIKey = "***"
	}
	return &cp
}
