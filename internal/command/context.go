package command

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agora-sh/agora/internal/api"
	"github.com/agora-sh/agora/internal/core"
	"github.com/agora-sh/agora/internal/db"
	"github.com/agora-sh/agora/internal/types"
)

// CommandContext carries the shared resources a command needs: config,
// the identity database, a credential holder kept fresh by a file
// watcher, and the hub API client.
type CommandContext struct {
	Config   *core.GlobalConfig
	DB       *sql.DB
	Identity *core.IdentityHolder
	Client   *api.Client
	Logger   *log.Logger

	watcher *db.Watcher
	logFile *os.File
}

// GetContext builds the command context. The identity holder starts from
// whatever the identity database holds (possibly empty) and reloads when
// another process writes it.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	config, err := core.ReadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		config.ServerURL = server
	}

	dbPath, err := db.DefaultPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	conn, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	holder := core.NewIdentityHolder(loadIdentity(conn))
	client, err := api.NewClient(config.ServerURL, holder)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	ctx := &CommandContext{
		Config:   config,
		DB:       conn,
		Identity: holder,
		Client:   client,
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		if logger, file, err := openDebugLog(); err == nil {
			ctx.Logger = logger
			ctx.logFile = file
		}
	}

	watcher, err := db.NewWatcher(dbPath, func() {
		ctx.Identity.Set(loadIdentity(conn))
	})
	if err == nil {
		ctx.watcher = watcher
		watcher.Start(context.Background())
	}
	return ctx, nil
}

// Close releases the context's resources.
func (c *CommandContext) Close() {
	if c.watcher != nil {
		c.watcher.Stop()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}

func loadIdentity(conn *sql.DB) types.Identity {
	stored, err := db.LoadIdentity(conn)
	if err != nil || stored == nil {
		return types.Identity{}
	}
	return *stored
}

func openDebugLog() (*log.Logger, *os.File, error) {
	dir, err := core.ConfigDir()
	if err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(file, "", log.LstdFlags|log.Lmicroseconds), file, nil
}
