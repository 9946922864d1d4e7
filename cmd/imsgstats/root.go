package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imsgstats/imsgstats/internal/imsgstats"
	"github.com/imsgstats/imsgstats/internal/imsgstats/conf"
)

var (
	cfgFile string
	debug   bool

	v   = conf.NewViper()
	cfg *conf.Config
)

var rootCmd = &cobra.Command{
	Use:           "imsgstats",
	Short:         "Text statistics over an iMessage history",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLog()
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./imsgstats.yaml or $HOME/.imsgstats/imsgstats.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for every output file")
	rootCmd.PersistentFlags().String("timezone", "", "zone message times are rendered in")
	_ = v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = v.BindPFlag("timezone", rootCmd.PersistentFlags().Lookup("timezone"))
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func initLog() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

func initConfig() error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("imsgstats")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".imsgstats"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return err
		}
		log.Debug().Msg("no config file, using defaults")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("config loaded")
	}

	c, err := conf.Load(v)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func service() *imsgstats.Service {
	return imsgstats.NewService(cfg)
}
