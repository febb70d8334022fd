package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/leaderboard"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print a leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		boardVal, _ := cmd.Flags().GetString("board")
		topic, _ := cmd.Flags().GetString("topic")
		limit, _ := cmd.Flags().GetInt("limit")
		name, _ := cmd.Flags().GetString("name")

		b, err := leaderboard.ParseBoard(boardVal)
		if err != nil {
			return err
		}
		if topic != "" && boardVal == "" {
			b = leaderboard.BoardTopic
		}

		var uid string
		if name != "" {
			p, err := identity.Named(name)
			if err != nil {
				return fmt.Errorf("invalid name %q: %w", name, err)
			}
			uid = p.UID
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rdb, err := openRedis(ctx)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, reading from the database")
		}
		if rdb != nil {
			defer rdb.Close()
		}

		svc := leaderboard.NewService(st.UserRepo(), st.EventRepo(), redisBoard(rdb))
		view, err := svc.View(ctx, leaderboard.Query{Board: b, Topic: topic, Limit: limit}, uid)
		if err != nil {
			return fmt.Errorf("load leaderboard: %w", err)
		}
		printBoard(cmd.OutOrStdout(), view, uid)
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().StringP("board", "b", "", "Board: all-time, daily, weekly or topic")
	leaderboardCmd.Flags().StringP("topic", "t", "", "Topic for the topic board")
	leaderboardCmd.Flags().IntP("limit", "n", leaderboard.DefaultLimit, "Number of rows")
	leaderboardCmd.Flags().String("name", "", "Highlight this player's rank")
}

func printBoard(w io.Writer, v *leaderboard.View, uid string) {
	title := string(v.Board)
	if v.Topic != "" {
		title += " · " + v.Topic
	}
	fmt.Fprintf(w, "Leaderboard (%s)\n", title)
	if len(v.Entries) == 0 {
		fmt.Fprintln(w, "No scores yet.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-24s  %8s  %6s\n", "Rank", "Player", "Score", "Done")
	fmt.Fprintln(w, strings.Repeat("─", 50))
	row := func(e leaderboard.Entry) {
		marker := " "
		if e.UID == uid {
			marker = "▸"
		}
		fmt.Fprintf(w, "%s%-4d  %-24s  %8d  %6d\n", marker, e.Rank, truncate(e.Username, 24), e.Score, e.CompletedExercises)
	}
	for _, e := range v.Entries {
		row(e)
	}
	if v.Self != nil {
		fmt.Fprintln(w, strings.Repeat("─", 50))
		row(*v.Self)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
