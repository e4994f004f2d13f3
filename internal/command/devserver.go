package command

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/agora-sh/agora/internal/devserver"
)

// NewDevServerCmd runs the in-memory reference hub for local use.
func NewDevServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory hub server for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			seed, _ := cmd.Flags().GetBool("seed")

			store := devserver.NewStore()
			if seed {
				devserver.Seed(store)
			}
			logger := log.New(cmd.ErrOrStderr(), "devserver ", log.LstdFlags)
			server := devserver.New(store, logger)

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "agora dev server listening on %s (state is in memory only)\n", addr)
			return httpServer.ListenAndServe()
		},
	}
	cmd.Flags().String("addr", ":8390", "listen address")
	cmd.Flags().Bool("seed", true, "start with seeded demo content")
	return cmd
}
