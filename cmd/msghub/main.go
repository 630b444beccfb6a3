package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "msghub",
		Short:         "Session-affine pub/sub message hub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newChatCmd())
	return root
}

func newChatCmd() *cobra.Command {
	var (
		cfgPath string
		topic   string
		nick    string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join an in-process chat topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("topic") {
				cfg.Topic = topic
			}
			if cmd.Flags().Changed("nick") {
				cfg.Nick = nick
			}
			return runChat(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&topic, "topic", "chat.lobby", "topic to join")
	cmd.Flags().StringVar(&nick, "nick", "", "nickname shown to other participants")
	return cmd
}
