// Package conversation tracks per-conversation state between exchanges:
// ordered turns, an identity, topic keywords, and whether the assistant is
// waiting on an answer.
package conversation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance. Turns are append-only; committed history is never
// rewritten.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the rolling state of one conversation.
type State struct {
	ID       string
	Turns    []Turn
	Keywords []string
	Awaiting bool
}

// NewState creates an empty conversation with a fresh identity.
func NewState() *State {
	return &State{
		ID: uuid.New().String(),
	}
}

// Advance commits one completed exchange. Keywords are recomputed from the
// user message alone, replacing the previous set, and the awaiting flag from
// the assistant reply.
func (s *State) Advance(userText, assistantText string) {
	s.Turns = append(s.Turns,
		Turn{Role: RoleUser, Content: userText},
		Turn{Role: RoleAssistant, Content: assistantText},
	)

	s.Keywords = Keywords(userText)
	s.Awaiting = IsQuestion(assistantText)
}

// Reset clears the conversation and issues a fresh identity. This is the only
// way an existing conversation changes identity.
func (s *State) Reset() {
	s.ID = uuid.New().String()
	s.Turns = nil
	s.Keywords = nil
	s.Awaiting = false
}

var (
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)

	stopwords = map[string]struct{}{
		"what":  {},
		"when":  {},
		"where": {},
		"which": {},
		"this":  {},
		"that":  {},
		"there": {},
		"their": {},
		"about": {},
	}
)

// Keywords summarizes text into at most five topic words: lowercased, words
// longer than three characters, stopwords removed, ranked by frequency with
// ties kept in order of first appearance.
func Keywords(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), "")

	counts := map[string]int{}

	var order []string

	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}

		if _, ok := stopwords[word]; ok {
			continue
		}

		if counts[word] == 0 {
			order = append(order, word)
		}

		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > 5 {
		order = order[:5]
	}

	return order
}

var (
	trailingQuestion = regexp.MustCompile(`\?\s*$`)
	questionWord     = regexp.MustCompile(`(?i)\b(what|how|why|when|where|which)\b`)

	questionPhrases = []string{
		"can you",
		"could you",
		"would you",
		"let me know",
		"thoughts",
	}
)

// IsQuestion reports whether an assistant reply solicits an answer: it ends
// with a question mark, contains an interrogative word, or uses a soliciting
// phrase.
func IsQuestion(text string) bool {
	if trailingQuestion.MatchString(text) {
		return true
	}

	if questionWord.MatchString(text) {
		return true
	}

	lower := strings.ToLower(text)

	for _, phrase := range questionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return false
}
