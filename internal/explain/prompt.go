package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/mathdrill/internal/problemgen"
)

const systemPrompt = `You are a patient math tutor. A learner has just finished a practice exercise and wants to understand the solution.`

func buildUserMessage(e *problemgen.Exercise, learnerAnswer string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", e.Topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", e.Difficulty)
	fmt.Fprintf(&b, "Exercise: %s\n", e.Prompt.Text)
	if len(e.Options) > 0 {
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(e.Options, " | "))
	}

	if parts := e.PartMap(); parts != nil {
		keys := make([]string, 0, len(parts))
		for k := range parts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Correct answer parts:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s = %s\n", k, parts[k])
		}
	} else {
		fmt.Fprintf(&b, "Correct answer: %s\n", e.Answer)
	}

	if learnerAnswer == "" {
		b.WriteString("Learner's answer: none\n")
	} else {
		fmt.Fprintf(&b, "Learner's answer: %s\n", learnerAnswer)
	}
	if e.Explanation != "" {
		fmt.Fprintf(&b, "Short explanation already shown: %s\n", e.Explanation)
	}

	b.WriteString(`
Instructions:
1. State the rule that solves this exercise in one sentence.
2. Solve it in short numbered steps, ending at the correct answer.
3. If the learner's answer is wrong, say which step they most likely got wrong. Otherwise leave the mistake empty.
4. Use plain text for math. Use ^ for powers and * for multiplication.`)

	return b.String()
}
