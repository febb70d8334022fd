package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every player, score and cached leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this deletes all scores; re-run with --yes to confirm")
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Reset(ctx); err != nil {
			return err
		}

		rdb, err := openRedis(ctx)
		if err != nil {
			return fmt.Errorf("database cleared but leaderboard cache was not: %w", err)
		}
		if rdb != nil {
			defer rdb.Close()
			if err := redisBoard(rdb).Clear(ctx); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), "All scores deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
