package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the server API",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := principalFromFlags(cmd, time.Now())
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("one of --name or --guest is required")
		}
		tokens, err := newTokenIssuer()
		if err != nil {
			return err
		}
		tok, err := tokens.Issue(*p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	addPlayFlags(tokenCmd)
}
