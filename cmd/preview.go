package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Drill exercises on the command line (no database)",
	Long: `Generate and interactively answer exercises for one or more topics.

This is a stateless developer tool: no database, no scores, no events.
Useful for checking exercise quality and testing new rules.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringSlice("topic", nil, "Topics to draw from (default: all)")
	previewCmd.Flags().String("difficulty", "easy", "Difficulty: easy, medium or hard")
	previewCmd.Flags().Int("count", 5, "Number of exercises")
	previewCmd.Flags().Uint64("seed", 0, "Random seed for repeatable exercises (0: time based)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	topicVals, _ := cmd.Flags().GetStringSlice("topic")
	diffVal, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetUint64("seed")

	reg := problemgen.DefaultRegistry()
	topics, err := parseTopics(reg, topicVals)
	if err != nil {
		return err
	}
	d, ok := problemgen.ParseDifficulty(diffVal)
	if !ok {
		return fmt.Errorf("invalid difficulty %q: must be easy, medium or hard", diffVal)
	}

	sc := session.Config{Generator: problemgen.New(reg, problemgen.DefaultConfig())}
	if seed != 0 {
		sc.Source = problemgen.NewSource(seed)
	}
	return drill(cmd, session.NewController(sc), topics, d, count, os.Stdin)
}

func parseTopics(reg *problemgen.Registry, vals []string) ([]problemgen.Topic, error) {
	if len(vals) == 0 {
		return reg.Topics(), nil
	}
	var topics []problemgen.Topic
	for _, v := range vals {
		t, ok := reg.ParseTopic(v)
		if !ok {
			return nil, fmt.Errorf("unknown topic %q", v)
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// drill runs count exercises on ctrl, reading answers from in.
func drill(cmd *cobra.Command, ctrl *session.Controller, topics []problemgen.Topic, d problemgen.Difficulty, count int, in io.Reader) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)

	if !ctrl.Start(topics, d) {
		return fmt.Errorf("cannot start a session")
	}

	readLine := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

exercises:
	for i := 1; i <= count; i++ {
		e := ctrl.State(ctx).Attempt.Exercise
		fmt.Fprintf(out, "── Exercise %d/%d · %s · %s ──\n", i, count, e.Topic, e.Difficulty)
		fmt.Fprintln(out, e.Prompt.Text)
		for j, opt := range e.Options {
			fmt.Fprintf(out, "  %d) %s\n", j+1, opt)
		}

		for {
			var fb session.Feedback
			if len(e.Parts) > 0 {
				parts := make(map[string]string, len(e.Parts))
				for _, p := range e.Parts {
					v, ok := readLine(fmt.Sprintf("%s: ", p.Label))
					if !ok {
						break exercises
					}
					parts[p.Key] = v
				}
				fb = ctrl.SubmitParts(ctx, parts)
			} else {
				v, ok := readLine("\nYour answer: ")
				if !ok {
					break exercises
				}
				fb = ctrl.Submit(ctx, optionText(e, v))
			}

			switch fb.Outcome {
			case session.OutcomeIgnored:
				continue
			case session.OutcomeRetry:
				fmt.Fprintf(out, "\033[33m✗ Not quite.\033[0m %d attempts left.\n", fb.AttemptsLeft)
				if fb.Hint != "" {
					fmt.Fprintf(out, "Hint: %s\n", fb.Hint)
				}
				continue
			case session.OutcomeCorrect:
				fmt.Fprintf(out, "\033[32m✓ Correct!\033[0m +%d\n", fb.PointsAwarded)
			case session.OutcomeExhausted:
				fmt.Fprintf(out, "\033[31m✗ Out of attempts.\033[0m Answer: %s\n", fb.Answer)
			}
			if fb.Explanation != "" {
				fmt.Fprintf(out, "Explanation: %s\n", fb.Explanation)
			}
			fmt.Fprintln(out)
			break
		}

		if i < count {
			ctrl.Next()
		}
	}

	s := ctrl.End()
	fmt.Fprintf(out, "── Summary: %d/%d correct, %d points ──\n", s.Correct, s.ExercisesCompleted, s.Score)
	return nil
}

// optionText maps a 1-based option number to its text for multiple-choice
// exercises. Input that already names an option is passed through.
func optionText(e *problemgen.Exercise, v string) string {
	for _, opt := range e.Options {
		if problemgen.Normalize(opt) == problemgen.Normalize(v) {
			return v
		}
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(e.Options) {
		return e.Options[n-1]
	}
	return v
}
