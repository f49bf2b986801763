package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"cinewatch/internal/support"
	"cinewatch/internal/ui"
)

var flagServer string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the support bot in the terminal",
	Long: `Opens the support chat. Without --server the bot answers locally from the
built-in help content; with --server it talks to a running CineWatch instance.`,
	Args: cobra.NoArgs,
	RunE: chatRun,
}

func init() {
	chatCmd.Flags().StringVarP(&flagServer, "server", "s", "", "Base URL of a running server, e.g. http://localhost:8080")
}

func chatRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if flagServer != "" {
		r, err := ui.NewRemoteResponder(flagServer, 15*time.Second)
		if err != nil {
			return err
		}
		return ui.Run(ctx, r)
	}

	data, err := support.Load(cfg.Data.Dir)
	if err != nil {
		return err
	}
	return ui.Run(ctx, ui.NewLocalResponder(data))
}
