package command

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agora-sh/agora/internal/db"
	"github.com/agora-sh/agora/internal/types"
)

// NewLoginCmd stores the display-name/password pair used on mutating
// calls. There is no server-side session; the pair is re-sent on every
// write and the first write registers the name.
func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the display name and password used for posting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()

			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			reader := bufio.NewReader(cmd.InOrStdin())
			if name == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Display name: ")
				name, err = readLine(reader)
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("display name cannot be empty")
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				password, err = readLine(reader)
				if err != nil {
					return err
				}
			}
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}

			id := types.Identity{Name: strings.TrimSpace(name), Password: password}
			if err := db.SaveIdentity(ctx.DB, id, time.Now().UnixMilli()); err != nil {
				return err
			}
			ctx.Identity.Set(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. The name is claimed on your first post.\n", id.Name)
			return nil
		},
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("password", "", "password (prompted when omitted)")
	return cmd
}

// NewLogoutCmd clears the stored identity.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()
			if err := db.ClearIdentity(ctx.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// NewWhoamiCmd prints the stored display name.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored display name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()
			id := ctx.Identity.Identity()
			if id.Name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in. Run 'agora login'.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.Name)
			return nil
		},
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
