package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/mathdrill/internal/leaderboard"
)

func TestPrintBoardMarksSelf(t *testing.T) {
	var buf bytes.Buffer
	printBoard(&buf, &leaderboard.View{
		Board: leaderboard.BoardWeekly,
		Entries: []leaderboard.Entry{
			{Rank: 1, UID: "user-bo", Username: "Bo", Score: 90, CompletedExercises: 9},
		},
		Self: &leaderboard.Entry{Rank: 14, UID: "user-ada", Username: "Ada", Score: 5, CompletedExercises: 1},
	}, "user-ada")

	out := buf.String()
	assert.Contains(t, out, "Leaderboard (weekly)")
	assert.Contains(t, out, " 1     Bo")
	assert.Contains(t, out, "▸14    Ada")
}

func TestPrintBoardEmpty(t *testing.T) {
	var buf bytes.Buffer
	printBoard(&buf, &leaderboard.View{Board: leaderboard.BoardAllTime}, "")
	assert.Contains(t, buf.String(), "No scores yet.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}
