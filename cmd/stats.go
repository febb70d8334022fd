package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <name>",
	Short: "Show a player's totals and recent sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		p, err := identity.Named(args[0])
		if err != nil {
			return fmt.Errorf("invalid name %q: %w", args[0], err)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := st.UserRepo().Totals(ctx, p.UID)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No scores recorded for %s.\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("load totals: %w", err)
		}
		rank, err := st.UserRepo().Rank(ctx, p.UID)
		if err != nil {
			return fmt.Errorf("load rank: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Player:     %s\n", u.Username)
		fmt.Fprintf(out, "Score:      %d\n", u.Score)
		fmt.Fprintf(out, "Completed:  %d\n", u.CompletedExercises)
		fmt.Fprintf(out, "Rank:       #%d\n", rank)
		fmt.Fprintf(out, "Since:      %s\n", u.CreatedAt.Local().Format("2006-01-02"))

		sessions, err := st.EventRepo().RecentSessions(ctx, p.UID, limit)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		if len(sessions) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-16s  %-8s  %6s  %7s  %6s  %s\n", "Date", "Level", "Done", "Correct", "Score", "Topics")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, s := range sessions {
			fmt.Fprintf(out, "%-16s  %-8s  %6d  %7d  %6d  %s\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				s.Difficulty,
				s.ExercisesCompleted,
				s.CorrectAnswers,
				s.Score,
				s.Topics,
			)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of recent sessions")
}
