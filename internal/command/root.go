package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "agora"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// NewRootCmd builds the agora CLI.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Agora - terminal client for a community hub",
		Long:          "Agora is a terminal client for a community hub: polling chat rooms and a voted, reacted feed board.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("server", "", "hub server URL (overrides config)")
	cmd.PersistentFlags().Bool("debug", false, "log engine activity to ~/.config/agora/debug.log")

	cmd.AddCommand(
		NewChatCmd(),
		NewFeedCmd(),
		NewLoginCmd(),
		NewLogoutCmd(),
		NewWhoamiCmd(),
		NewDevServerCmd(),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd(Version).Execute()
}
