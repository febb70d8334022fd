package session

import (
	"sort"
	"time"

	"github.com/abhisek/mathdrill/internal/problemgen"
)

// Summary holds the data displayed when a session ends.
type Summary struct {
	SessionID          string
	Difficulty         problemgen.Difficulty
	Duration           time.Duration
	Score              int
	ExercisesCompleted int
	Correct            int
	Accuracy           float64
	TopicResults       []TopicResult
}

func buildSummary(id string, topics []problemgen.Topic, d problemgen.Difficulty, totals SessionTotals, elapsed time.Duration) *Summary {
	var results []TopicResult
	listed := make(map[problemgen.Topic]bool, len(topics))
	for _, t := range topics {
		listed[t] = true
		if tr, ok := totals.PerTopic[t]; ok {
			results = append(results, *tr)
		}
	}
	// Unknown selections are served by the fallback topic.
	var extra []TopicResult
	for t, tr := range totals.PerTopic {
		if !listed[t] {
			extra = append(extra, *tr)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Topic < extra[j].Topic })
	results = append(results, extra...)

	var accuracy float64
	if totals.ExercisesCompleted > 0 {
		accuracy = float64(totals.Correct) / float64(totals.ExercisesCompleted)
	}

	return &Summary{
		SessionID:          id,
		Difficulty:         d,
		Duration:           elapsed,
		Score:              totals.Score,
		ExercisesCompleted: totals.ExercisesCompleted,
		Correct:            totals.Correct,
		Accuracy:           accuracy,
		TopicResults:       results,
	}
}
