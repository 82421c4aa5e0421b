package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusdeck/internal/musicsearch"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search YouTube for focus music",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.Search.YouTubeAPIKey == "" {
				if _, err := musicsearch.NormalizeQuery(strings.Join(args, " ")); err != nil {
					return err
				}
				return fmt.Errorf("%w: set search.youtube_api_key or FOCUSDECK_YOUTUBE_API_KEY", musicsearch.ErrMissingAPIKey)
			}
			provider, err := musicsearch.NewYouTube(cmd.Context(), cfg.Search.YouTubeAPIKey)
			if err != nil {
				return err
			}
			svc := musicsearch.NewService(provider, musicsearch.Options{
				Timeout:    cfg.SearchTimeout(),
				MaxResults: cfg.Search.MaxResults,
				Logger:     logger,
			})

			tracks, err := svc.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tracks) == 0 {
				fmt.Fprintln(out, "No results")
				return nil
			}
			rows := make([][]string, 0, len(tracks))
			for i, tr := range tracks {
				rows = append(rows, []string{fmt.Sprint(i + 1), tr.Title, tr.Channel, "https://www.youtube.com/watch?v=" + tr.ID})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Title", "Channel", "URL"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}
