package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/lazypower/memoria/internal/client"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionRemote bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the memoria build, and with --remote the server's",
	RunE: func(cmd *cobra.Command, args []string) error {
		var c *client.Client
		if versionRemote {
			c, _ = newClient()
		}
		return printVersion(cmd.Context(), cmd.OutOrStdout(), c)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionRemote, "remote", false, "also ask the configured server for its version")
}

// printVersion writes the local build line and, when c is set, the version
// the server reports on its health endpoint.
func printVersion(ctx context.Context, out io.Writer, c *client.Client) error {
	fmt.Fprintf(out, "memoria %s (commit: %s, built: %s, %s)\n", Version, Commit, BuildDate, runtime.Version())
	if c == nil {
		return nil
	}
	health, err := c.Health(ctx)
	if err != nil {
		return fmt.Errorf("server version: %w", err)
	}
	fmt.Fprintf(out, "server %v\n", health["version"])
	return nil
}

// VersionString is what the server reports as its version.
func VersionString() string {
	return Version + "+" + Commit
}
