package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/shell"
	"github.com/example/storefront/internal/storage"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse the catalog, manage the cart and log in from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := storage.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Warn("close storage", zap.Error(err))
			}
		}()

		sh := shell.New(shell.Options{
			Backend:           client.New(cfg.ServerURL, cfg.HTTPTimeout, logger.Named("client")),
			Storage:           st,
			AdminPlanID:       cfg.AdminPlanID,
			ReconcileInterval: cfg.ReconcileInterval,
			Logger:            logger,
		})
		return sh.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}
