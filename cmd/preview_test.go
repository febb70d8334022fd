package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/session"
)

func TestParseTopics(t *testing.T) {
	reg := problemgen.DefaultRegistry()

	all, err := parseTopics(reg, nil)
	require.NoError(t, err)
	assert.Equal(t, reg.Topics(), all)

	one, err := parseTopics(reg, []string{string(problemgen.TopicShortMultiplication)})
	require.NoError(t, err)
	assert.Equal(t, []problemgen.Topic{problemgen.TopicShortMultiplication}, one)

	_, err = parseTopics(reg, []string{"calculus"})
	assert.Error(t, err)
}

func TestOptionText(t *testing.T) {
	e := &problemgen.Exercise{Options: []string{"yes", "no"}}
	assert.Equal(t, "no", optionText(e, "2"))
	assert.Equal(t, "yes", optionText(e, "yes"))
	assert.Equal(t, "7", optionText(e, "7"))

	numeric := &problemgen.Exercise{Options: []string{"14", "1", "10"}}
	assert.Equal(t, "1", optionText(numeric, "1"), "an option value wins over its index")
	assert.Equal(t, "10", optionText(numeric, "3"))
}

func TestDrillStopsWhenInputCloses(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)

	ctrl := session.NewController(session.Config{Source: problemgen.NewSource(7)})
	err := drill(cmd, ctrl, []problemgen.Topic{problemgen.TopicOrderOfOperations}, problemgen.DifficultyEasy, 3, strings.NewReader(""))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Exercise 1/3")
	assert.Contains(t, out.String(), "Summary: 0/0 correct")
}
