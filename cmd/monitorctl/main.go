// cmd/monitorctl/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xhs-monitor/internal/app"
)

var (
	engine *app.Engine

	email   string
	keyword string
	every   time.Duration
	dead    bool
	limit   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "monitorctl",
	Short:         "Operate the XHS comment monitor from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		engine, err = app.NewEngine()
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if engine == nil {
			return nil
		}
		return engine.Close()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a monitoring pass for one user",
	Long: `Run a monitoring pass over every post the user subscribed to.
With --every the pass repeats on that interval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if every <= 0 {
			result := engine.Service.RunMonitorPass(ctx, email, keyword)
			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("monitor pass failed: %s", result.Message)
			}
			return nil
		}

		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			result := engine.Service.RunMonitorPass(ctx, email, keyword)
			if err := printJSON(result); err != nil {
				return err
			}
			engine.Logger.Info("next pass scheduled", zap.Duration("every", every))

			select {
			case <-ctx.Done():
				engine.Logger.Info("stopping scheduled passes")
				return nil
			case <-ticker.C:
			}
		}
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage platform sessions",
}

var sessionsAddCmd = &cobra.Command{
	Use:   "add <cookie>",
	Short: "Provision a session from a cookie string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := engine.Service.AddSession(ctx, args[0], !dead)
		if err != nil {
			return err
		}
		live, err := engine.Service.CountLiveSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session %d added, %d live\n", sess.ID, live)
		return nil
	},
}

var sessionsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of live sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := engine.Service.CountLiveSessions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions without their cookie values",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := engine.Service.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tALIVE\tCREATED\tLAST USED")
		for _, s := range sessions {
			lastUsed := "-"
			if !s.LastUsedAt.IsZero() {
				lastUsed = s.LastUsedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%d\t%t\t%s\t%s\n", s.ID, s.Alive, s.CreatedAt.Format(time.RFC3339), lastUsed)
		}
		return w.Flush()
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage monitored posts",
}

var targetsAddCmd = &cobra.Command{
	Use:   "add <post-url>",
	Short: "Subscribe a user to a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := engine.Service.AddTarget(cmd.Context(), email, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "target %d added for %s\n", target.ID, target.UserID)
		return nil
	},
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's monitored posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := engine.Service.ListTargets(cmd.Context(), email)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLAST COUNT\tURL")
		for _, t := range targets {
			fmt.Fprintf(w, "%d\t%d\t%s\n", t.ID, t.LastCommentCount, t.URL)
		}
		return w.Flush()
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search posts by keyword",
	Long: `Search posts by keyword and print their explore URLs.
Any printed URL can be passed to "targets add".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hits, err := engine.Service.SearchNotes(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NOTE\tLIKES\tTITLE\tURL")
		for _, h := range hits {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", h.NoteID, h.LikeCount, h.Title, h.URL)
		}
		return w.Flush()
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Read a post without subscribing to it",
}

var notesInfoCmd = &cobra.Command{
	Use:   "info <post-url>",
	Short: "Print a post's current metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := engine.Service.NoteInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(snap)
	},
}

var notesCommentsCmd = &cobra.Command{
	Use:   "comments <post-url>",
	Short: "Print every comment and reply of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := engine.Service.NoteComments(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(comments)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func init() {
	runCmd.Flags().StringVar(&email, "email", "", "subscribing user")
	runCmd.Flags().StringVar(&keyword, "keyword", "", "keyword label stored with collected comments")
	runCmd.Flags().DurationVar(&every, "every", 0, "repeat the pass on this interval (e.g. 10m)")
	_ = runCmd.MarkFlagRequired("email")
	_ = runCmd.MarkFlagRequired("keyword")

	sessionsAddCmd.Flags().BoolVar(&dead, "dead", false, "store the session as already rejected")
	sessionsCmd.AddCommand(sessionsAddCmd, sessionsCountCmd, sessionsListCmd)

	targetsCmd.PersistentFlags().StringVar(&email, "email", "", "subscribing user")
	_ = targetsCmd.MarkPersistentFlagRequired("email")
	targetsCmd.AddCommand(targetsAddCmd, targetsListCmd)

	searchCmd.Flags().IntVar(&limit, "limit", 10, "maximum number of posts to print")
	notesCmd.AddCommand(notesInfoCmd, notesCommentsCmd)

	rootCmd.AddCommand(runCmd, sessionsCmd, targetsCmd, searchCmd, notesCmd)
}
