package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/imsgstats/imsgstats/internal/imsgstats"
	"github.com/imsgstats/imsgstats/internal/model"
)

func init() {
	extractCmd.Flags().Bool("force", false, "extract even when the sources did not change")
	runCmd.Flags().Bool("force", false, "extract even when the sources did not change")
	runCmd.Flags().Bool("enrich", false, "look up Spotify artists and YouTube titles")
	runCmd.Flags().Bool("activities", false, "clean the activity export")

	searchCmd.Flags().String("person", "", "comma separated first names")
	searchCmd.Flags().String("direction", "", "sent or received")
	searchCmd.Flags().String("start", "", "earliest date, 2006-01-02")
	searchCmd.Flags().String("end", "", "latest date, 2006-01-02")
	searchCmd.Flags().Int("limit", 0, "page size")
	searchCmd.Flags().Int("offset", 0, "page offset")
	searchCmd.Flags().Bool("rebuild", false, "rebuild the index first")

	enrichCmd.AddCommand(enrichSpotifyCmd, enrichYouTubeCmd)
	rootCmd.AddCommand(extractCmd, cleanCmd, reportCmd, linksCmd, enrichCmd, titlesCmd, activitiesCmd, searchCmd, configCmd, runCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Copy messages and contacts out of chat.db and the AddressBook",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		_, err := service().Extract(cmd.Context(), force)
		return err
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Join messages with their contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service().Clean(cmd.Context())
		return err
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the text count trees and summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service().Report(cmd.Context())
		return err
	},
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Split sent links by site and count domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service().Links(cmd.Context())
		return err
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Look up shared links on third-party APIs",
}

var enrichSpotifyCmd = &cobra.Command{
	Use:   "spotify",
	Short: "Count the artists of shared Spotify tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service().EnrichSpotify(cmd.Context())
		return err
	},
}

var enrichYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Resolve shared YouTube video titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service().EnrichYouTube(cmd.Context())
		return err
	},
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Recount the words of resolved YouTube titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service().TitleCounts(cmd.Context())
		return err
	},
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Clean the activity export into runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service().Activities(cmd.Context())
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts imsgstats.RunOptions
		opts.Force, _ = cmd.Flags().GetBool("force")
		opts.Enrich, _ = cmd.Flags().GetBool("enrich")
		opts.Activities, _ = cmd.Flags().GetBool("activities")
		sum, err := service().Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		for stage, reason := range sum.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped %s: %s\n", stage, reason)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over the extracted messages",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := searchRequest(cmd, args)
		if err != nil {
			return err
		}
		rebuild, _ := cmd.Flags().GetBool("rebuild")
		resp, err := service().Search(cmd.Context(), req, rebuild)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, h := range resp.Hits {
			m := h.Message
			fmt.Fprintf(out, "%s  %-8s %-12s %s\n", m.Time.Format("2006-01-02 15:04"), m.Direction, m.FirstName(), h.Snippet)
		}
		log.Info().Int("total", resp.Total).Int("shown", len(resp.Hits)).Int64("ms", resp.DurationMs).Msg("search")
		return nil
	},
}

func searchRequest(cmd *cobra.Command, args []string) (*model.SearchRequest, error) {
	f := cmd.Flags()
	req := &model.SearchRequest{Query: strings.Join(args, " ")}
	req.Person, _ = f.GetString("person")
	req.Direction, _ = f.GetString("direction")
	req.Limit, _ = f.GetInt("limit")
	req.Offset, _ = f.GetInt("offset")

	for name, dst := range map[string]*time.Time{"start": &req.Start, "end": &req.End} {
		s, _ := f.GetString(name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		if name == "end" {
			t = t.Add(24*time.Hour - time.Second)
		}
		*dst = t
	}
	return req, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg.Redacted())
	},
}
