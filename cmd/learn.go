package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/learn"
	"github.com/abhisek/mathdrill/internal/problemgen"
)

var learnCmd = &cobra.Command{
	Use:   "learn [topic]",
	Short: "Print the lesson for a topic (or list all lessons)",
	Long: `Print the reference lesson for a topic: the rules, formulas and a worked
example. Without a topic, every lesson is listed by title.

The distributive lesson also draws the area model of a(b + c); pick its
numbers with --area.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLearn,
}

func init() {
	addLearnFlags(learnCmd)
}

func addLearnFlags(cmd *cobra.Command) {
	cmd.Flags().IntSlice("area", []int{3, 5, 2}, "Area model operands a,b,c")
}

func runLearn(cmd *cobra.Command, args []string) error {
	reg := problemgen.DefaultRegistry()
	catalog := learn.NewCatalog(problemgen.New(reg, problemgen.DefaultConfig()))
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for _, l := range catalog.Lessons() {
			fmt.Fprintf(out, "%-24s %s\n", l.Topic, l.Title)
		}
		return nil
	}

	topic, ok := reg.ParseTopic(args[0])
	if !ok {
		return fmt.Errorf("unknown topic %q", args[0])
	}
	lesson, _ := catalog.Lesson(topic)

	area, _ := cmd.Flags().GetIntSlice("area")
	if len(area) != 3 {
		return fmt.Errorf("--area needs three numbers a,b,c, got %d", len(area))
	}
	printLesson(out, lesson, learn.NewAreaModel(area[0], area[1], area[2]))
	return nil
}

func printLesson(out io.Writer, l learn.Lesson, area learn.AreaModel) {
	fmt.Fprintf(out, "── %s ──\n%s\n\n", l.Title, l.Summary)
	for i, st := range l.Steps {
		fmt.Fprintf(out, "  %d. %s\n", i+1, st)
	}
	if len(l.Formulas) > 0 {
		fmt.Fprintln(out, "\nFormulas:")
		for _, f := range l.Formulas {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}
	if l.AreaModel {
		fmt.Fprintf(out, "\nArea model: %s\n\n", area.Equation())
		for _, line := range area.Render(48) {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}

	fmt.Fprintf(out, "\nWorked example:\n  %s\n", l.Example.Prompt)
	if l.Example.Figure != "" {
		fmt.Fprintf(out, "  Figure: %s\n", l.Example.Figure)
	}
	if len(l.Example.Options) > 0 {
		fmt.Fprintf(out, "  Options: %s\n", strings.Join(l.Example.Options, ", "))
	}
	fmt.Fprintf(out, "  Answer: %s\n  %s\n", l.Example.Answer, l.Example.Explanation)
	fmt.Fprintf(out, "\nUp to %d attempt(s) per exercise; points easy/medium/hard: %d/%d/%d\n",
		l.MaxAttempts, l.Points["easy"], l.Points["medium"], l.Points["hard"])
}
