package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM provider and its recorded usage",
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show aggregated LLM token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		usage, err := st.EventRepo().LLMUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-10s  %-24s  %-12s  %6s  %6s  %10s  %10s  %8s\n",
			"Provider", "Model", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
		fmt.Fprintln(out, strings.Repeat("─", 98))

		var totalCalls, totalIn, totalOut int
		for _, u := range usage {
			fmt.Fprintf(out, "%-10s  %-24s  %-12s  %6d  %6d  %10d  %10d  %8d\n",
				u.Provider, truncate(u.Model, 24), u.Purpose, u.Requests, u.Failures,
				u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			totalCalls += u.Requests
			totalIn += u.InputTokens
			totalOut += u.OutputTokens
		}

		fmt.Fprintln(out, strings.Repeat("─", 98))
		fmt.Fprintf(out, "%-10s  %-24s  %-12s  %6d  %6s  %10d  %10d\n",
			"TOTAL", "", "", totalCalls, "", totalIn, totalOut)
		return nil
	},
}

var llmTestCmd = &cobra.Command{
	Use:   "test [prompt]",
	Short: "Send one prompt to the configured provider",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		prompt := "Explain in one sentence why 4 + 3 × 2 is 10."
		if len(args) == 1 {
			prompt = args[0]
		}

		provider, err := newProvider(ctx, nil)
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		if provider == nil {
			return fmt.Errorf("no LLM provider configured; set MATHDRILL_LLM_PROVIDER or a vendor API key")
		}

		start := time.Now()
		resp, err := provider.Generate(llm.WithPurpose(ctx, llm.PurposeConnCheck), llm.Request{
			Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
			MaxTokens: 200,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Model:   %s\n", provider.ModelID())
		fmt.Fprintf(out, "Tokens:  %d in / %d out\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
		fmt.Fprintf(out, "Latency: %s\n\n", time.Since(start).Round(time.Millisecond))
		fmt.Fprintln(out, resp.Text())
		return nil
	},
}

func init() {
	llmCmd.AddCommand(llmUsageCmd)
	llmCmd.AddCommand(llmTestCmd)
}
