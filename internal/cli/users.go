package cli

import (
	"fmt"

	"github.com/lazypower/memoria/internal/auth"
	"github.com/lazypower/memoria/internal/journal"
	"github.com/spf13/cobra"
)

// --- user command ---

var userFullName string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local user profiles",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a profile in the local database",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&userFullName, "name", "", "full name")
	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	p, err := db.CreateProfile(journal.Profile{Username: args[0], FullName: userFullName})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Username)
	return nil
}

// --- token command ---

var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Issue a bearer token for a local user",
	Long:  "Signs a token with the configured secret. The server must use the same secret to accept it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	p, err := db.GetProfileByUsername(args[0])
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no user named %q", args[0])
	}

	token, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(p.ID, p.Username)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
