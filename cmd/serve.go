package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/boozedog/corsserve/internal/config"
	"github.com/boozedog/corsserve/internal/web"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(cfg, cmd.OutOrStdout())
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
