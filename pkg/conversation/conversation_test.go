package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	keywords := Keywords("machine learning helps machine learning projects")
	require.Equal(t, []string{"machine", "learning", "helps", "projects"}, keywords)
}

func TestKeywordsFiltering(t *testing.T) {
	// Short words and stopwords never rank.
	keywords := Keywords("what is the plan for this sprint")
	require.Equal(t, []string{"plan", "sprint"}, keywords)

	require.Empty(t, Keywords(""))
	require.Empty(t, Keywords("a b c"))
}

func TestKeywordsLimit(t *testing.T) {
	keywords := Keywords("alpha bravo charlie delta echo foxtrot golf")
	require.Len(t, keywords, 5)
	require.Equal(t, []string{"alpha", "bravo", "charlie", "delta", "echo"}, keywords)
}

func TestKeywordsFrequency(t *testing.T) {
	keywords := Keywords("deploy tests, deploy docs, deploy configs, tests again")
	require.Equal(t, "deploy", keywords[0])
	require.Equal(t, "tests", keywords[1])
}

func TestIsQuestion(t *testing.T) {
	require.True(t, IsQuestion("What do you think?"))
	require.False(t, IsQuestion("Here is the summary."))
}

func TestIsQuestionForms(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Done. Anything else?", true},
		{"Done. Anything else?\n", true},
		{"I wonder what the plan covers.", true},
		{"Could you share the file name", true},
		{"Let me know if that works", true},
		{"Any thoughts on the draft", true},
		{"All tasks are finished.", false},
		{"", false},
	}

	for _, test := range tests {
		require.Equal(t, test.want, IsQuestion(test.text), test.text)
	}
}

func TestStateAdvance(t *testing.T) {
	state := NewState()
	require.NotEmpty(t, state.ID)
	require.Empty(t, state.Turns)

	state.Advance("tell me about the release checklist", "The checklist has nine items.")

	require.Len(t, state.Turns, 2)
	require.Equal(t, RoleUser, state.Turns[0].Role)
	require.Equal(t, RoleAssistant, state.Turns[1].Role)
	require.Equal(t, []string{"tell", "release", "checklist"}, state.Keywords)
	require.False(t, state.Awaiting)

	state.Advance("expand item three", "Which environment do you mean?")

	require.Len(t, state.Turns, 4)
	require.Equal(t, []string{"expand", "item", "three"}, state.Keywords)
	require.True(t, state.Awaiting)
}

func TestStateReset(t *testing.T) {
	state := NewState()
	state.Advance("hello there friend", "Hi! How can I help?")

	before := state.ID
	state.Reset()

	require.NotEqual(t, before, state.ID)
	require.Empty(t, state.Turns)
	require.Empty(t, state.Keywords)
	require.False(t, state.Awaiting)
}
