package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/lazypower/memoria/internal/client"
	"github.com/lazypower/memoria/internal/journal"
	"github.com/lazypower/memoria/internal/relationship"
	"github.com/spf13/cobra"
)

// lookup resolves a username through the server.
func lookup(ctx context.Context, c *client.Client, username string) (*journal.Profile, error) {
	p, err := c.ProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no user named %q", username)
	}
	return p, nil
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status <username>",
	Short: "Show your relationship with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, _ := newClient()
		p, err := lookup(ctx, c, args[0])
		if err != nil {
			return err
		}
		state, err := c.Relationship(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Username, state)
		return nil
	},
}

// --- friends command ---

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List everyone you have a relationship with",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _ := newClient()
		friends, err := c.Friends(cmd.Context())
		if err != nil {
			return err
		}
		if len(friends) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No relationships yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, f := range friends {
			fmt.Fprintf(w, "%s\t%s\n", f.UserID, f.State)
		}
		return w.Flush()
	},
}

// --- friend command ---

var friendCmd = &cobra.Command{
	Use:   "friend",
	Short: "Send, answer, or remove friend requests",
}

// friendAction builds a subcommand that applies fn to the named user and
// prints the resulting state.
func friendAction(use, short string, fn func(*client.Client, context.Context, string) (relationship.State, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, _ := newClient()
			p, err := lookup(ctx, c, args[0])
			if err != nil {
				return err
			}
			state, err := fn(c, ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Username, state)
			return nil
		},
	}
}

func init() {
	friendCmd.AddCommand(
		friendAction("request", "Send a friend request", func(c *client.Client, ctx context.Context, id string) (relationship.State, error) {
			if _, err := c.RequestFriendship(ctx, id); err != nil {
				return "", err
			}
			return c.Relationship(ctx, id)
		}),
		friendAction("accept", "Accept a pending request", (*client.Client).AcceptFriendship),
		friendAction("reject", "Reject a pending request", (*client.Client).RejectFriendship),
		friendAction("block", "Block a user", (*client.Client).Block),
		friendAction("remove", "Unfollow, cancel a request, or unblock", (*client.Client).Unfriend),
	)
}
