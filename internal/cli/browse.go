package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lazypower/memoria/internal/logging"
	"github.com/lazypower/memoria/internal/session"
	"github.com/spf13/cobra"
)

var (
	browseFrom string
	browseTo   string
)

var browseCmd = &cobra.Command{
	Use:   "browse <username>",
	Short: "Page through a user's memories, liking and commenting",
	Long: `Opens the memories of <username> that you may see, newest first.

Commands:
  n          next memory
  p          previous memory
  l          like or unlike
  c <text>   post a comment
  r          reload likes and comments
  q          quit`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseFrom, "from", "", "earliest date (YYYY-MM-DD)")
	browseCmd.Flags().StringVar(&browseTo, "to", "", "latest date (YYYY-MM-DD)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	c, viewer := newClient()
	me, ok := viewer.ViewerID()
	if !ok {
		return fmt.Errorf("no valid token; run `memoria token <username>` and pass --token")
	}

	owner, err := lookup(ctx, c, args[0])
	if err != nil {
		return err
	}
	list, err := c.VisibleMemories(ctx, owner.ID, browseFrom, browseTo)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s has no memories you can see.\n", owner.DisplayName())
		return nil
	}

	notify := session.NotifierFunc(func(msg string) {
		fmt.Fprintf(os.Stderr, "! %s\n", msg)
	})
	ctl := session.New(c, viewer, notify,
		session.WithCloseDelay(cfg.Session.CloseDelay),
		session.WithLogger(log),
	)
	ctl.Open(ctx, list, 0)
	defer ctl.Close()

	return browse(ctx, ctl, me, cmd.InOrStdin(), cmd.OutOrStdout())
}

// browse runs the command loop over in until q or EOF.
func browse(ctx context.Context, ctl *session.Controller, me string, in io.Reader, out io.Writer) error {
	render(out, ctl.Snapshot(), me)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "":
			continue
		case "q":
			return nil
		case "n":
			if !ctl.Navigate(ctx, session.Next) {
				fmt.Fprintln(out, "(last memory)")
				continue
			}
		case "p":
			if !ctl.Navigate(ctx, session.Prev) {
				fmt.Fprintln(out, "(first memory)")
				continue
			}
		case "l":
			ctl.ToggleLike(ctx)
		case "c":
			ctl.PostComment(ctx, arg)
		case "r":
			ctl.Reload(ctx)
		default:
			fmt.Fprintf(out, "unknown command %q\n", cmd)
			continue
		}
		render(out, ctl.Snapshot(), me)
	}
}

func render(out io.Writer, st session.State, me string) {
	if st.Item == nil {
		fmt.Fprintln(out, "(nothing open)")
		return
	}
	m := st.Item

	fmt.Fprintf(out, "\n[%d/%d] %s  %s\n", st.Cursor+1, st.Len, m.Date, m.Title)
	if m.Author != nil {
		fmt.Fprintf(out, "  by %s", m.Author.DisplayName())
	}
	fmt.Fprintf(out, "  (%s, %s)\n", m.Category, m.Visibility)
	if m.Location != "" {
		fmt.Fprintf(out, "  at %s\n", m.Location)
	}
	if m.Description != "" {
		fmt.Fprintf(out, "  %s\n", m.Description)
	}

	heart := "♡"
	if st.LikedBy(me) {
		heart = "♥"
	}
	fmt.Fprintf(out, "  %s %d  💬 %d\n", heart, len(st.Likes), len(st.Comments))
	for _, c := range st.Comments {
		name := c.UserID
		if c.Author != nil {
			name = c.Author.DisplayName()
		}
		fmt.Fprintf(out, "    %s: %s\n", name, c.Content)
	}
}
