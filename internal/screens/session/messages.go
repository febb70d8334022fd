package session

// explainPollMsg asks the screen to check for a fetched explanation.
type explainPollMsg struct {
	ExerciseID string
}
