package cli

import (
	"github.com/lazypower/memoria/internal/auth"
	"github.com/lazypower/memoria/internal/client"
	"github.com/lazypower/memoria/internal/config"
	"github.com/lazypower/memoria/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
	tokenFlag  string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "memoria",
	Short: "A social memory journal",
	Long:  "Memoria keeps a journal of dated memories and life periods, shared with friends, lists, or the public.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if serverURL != "" {
			cfg.Client.URL = serverURL
		}
		if tokenFlag != "" {
			cfg.Client.Token = tokenFlag
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.memoria/config.toml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "server URL for client commands")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "bearer token for client commands")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(friendCmd)
	rootCmd.AddCommand(browseCmd)
}

// openDB is a helper that opens the database for CLI commands.
func openDB() (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}

// newClient returns an API client and the viewer it authenticates as.
func newClient() (*client.Client, *auth.TokenViewer) {
	viewer := auth.NewTokenViewer(cfg.Client.Token)
	return client.FromConfig(cfg.Client, viewer), viewer
}
