package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agora-sh/agora/internal/core"
	engine "github.com/agora-sh/agora/internal/sync"
	"github.com/agora-sh/agora/internal/tui"
)

// NewChatCmd opens the UI on the chat screen.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [channel]",
		Short: "Open the hub UI on a chat channel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel := ""
			if len(args) > 0 {
				channel = args[0]
			}
			return runUI(cmd, channel, false)
		},
	}
}

// NewFeedCmd opens the UI on the feed board.
func NewFeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Open the hub UI on the feed board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, "", true)
		},
	}
}

func runUI(cmd *cobra.Command, channel string, startOnFeed bool) error {
	ctx, err := GetContext(cmd)
	if err != nil {
		return err
	}
	defer ctx.Close()

	channels := ctx.Config.Channels
	if channel == "" {
		channel = ctx.Config.LastChannel
	}
	if channel != "" && !contains(channels, channel) {
		channels = append(channels, channel)
	}
	if channel == "" {
		channel = channels[0]
	}

	err = tui.Run(tui.Options{
		Client:      ctx.Client,
		Identity:    ctx.Identity,
		Channels:    channels,
		Channel:     channel,
		StartOnFeed: startOnFeed,
		Config:      engine.DefaultConfig(),
		Logger:      ctx.Logger,
	})
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}

	ctx.Config.LastChannel = channel
	if writeErr := core.WriteGlobalConfig(ctx.Config); writeErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not save config: %v\n", writeErr)
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
