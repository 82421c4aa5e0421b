package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusdeck/internal/app"
	"github.com/sandeepkv93/focusdeck/internal/update"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// The dashboard owns the terminal, so logs go to a file.
			logFile, err := os.OpenFile(cfg.LogFile(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()
			logger, err := ctx.newLogger(logFile)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			a.Start()
			defer func() {
				if err := a.Close(); err != nil {
					logger.WithError(err).Warn("shutdown incomplete")
				}
			}()

			model := update.NewModel(update.Deps{
				Store:      a.Store,
				Timers:     a.Timers,
				Feed:       a.Feed,
				Highlights: a.Highlights,
				Search:     a.Search,
				Logger:     logger,
			})
			defer model.Close()

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("focusdeck tui failed: %w", err)
			}
			return nil
		},
	}
}
