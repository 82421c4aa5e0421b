package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusdeck/internal/app"
	"github.com/sandeepkv93/focusdeck/internal/httpapi"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the timer engine, alarm scanner and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			a.Start()
			defer func() {
				if err := a.Close(); err != nil {
					logger.WithError(err).Warn("shutdown incomplete")
				}
			}()

			address := cfg.Server.Bind
			if strings.TrimSpace(bind) != "" {
				address = bind
			}
			srv := httpapi.New(httpapi.Options{
				Store:      a.Store,
				Timers:     a.Timers,
				Feed:       a.Feed,
				Highlights: a.Highlights,
				Search:     a.Search,
				Metrics:    a.Metrics,
				Logger:     logger,
			})
			if err := srv.Start(runCtx, address); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "focusdeck listening on http://%s\n", srv.Addr())

			<-runCtx.Done()
			srv.Stop()
			logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
