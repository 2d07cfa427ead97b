package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"daybook/pkg/conversation"
	"daybook/pkg/mention"
	"daybook/pkg/temporal"
	"daybook/pkg/vault"
)

// EnrichedMessage is the outcome of one resolution: the payload for the
// model, the cleaned transcript form, and the names of the attached
// documents in attach order.
type EnrichedMessage struct {
	WireText    string   `json:"wire_text"`
	DisplayText string   `json:"display_text"`
	Referenced  []string `json:"referenced,omitempty"`
}

type assembleInput struct {
	text  string
	index *vault.Index
	state *conversation.State

	includeCurrent bool
	currentName    string
}

// assemble runs one resolution against an index snapshot: explicit mentions
// first, then the daily note for a temporal expression, then the current
// document. A document is attached once; later sources never duplicate an
// earlier name.
func (s *Service) assemble(ctx context.Context, in assembleInput) (*EnrichedMessage, []Notice) {
	mentions := mention.Extract(in.text)

	var notices []Notice
	var documents []vault.Document
	var referenced []string

	attach := func(document vault.Document) {
		for _, name := range referenced {
			if strings.EqualFold(name, document.Name) {
				return
			}
		}

		documents = append(documents, document)
		referenced = append(referenced, document.Name)
	}

	for _, m := range mentions {
		document, kind := in.index.Match(m.Token)

		if kind == vault.MatchNone {
			notices = append(notices, Notice{
				Kind:    NoticeUnresolved,
				Token:   m.Token,
				Message: fmt.Sprintf("no note matches @%s", m.Token),
			})

			continue
		}

		attach(document)
	}

	if date, ok := temporal.Resolve(in.text, s.now()); ok {
		// A day without a note attaches nothing; content is never invented.
		if document, ok := vault.Locate(in.index, date); ok {
			attach(document)
		}
	}

	if in.includeCurrent && in.currentName != "" {
		if document, ok := in.index.Lookup(in.currentName); ok {
			attach(document)
		} else {
			notices = append(notices, Notice{
				Kind:    NoticeUnresolved,
				Token:   in.currentName,
				Message: fmt.Sprintf("current document %q is not in the vault", in.currentName),
			})
		}
	}

	enriched := &EnrichedMessage{
		DisplayText: mention.Strip(in.text, mentions),
		Referenced:  referenced,
	}

	var blocks []string

	for _, document := range documents {
		content, err := s.catalog.Read(ctx, document)

		if err != nil {
			notices = append(notices, Notice{
				Kind:     NoticeReadError,
				Document: document.Name,
				Message:  fmt.Sprintf("read %s: %v", document.Path, err),
			})

			continue
		}

		blocks = append(blocks, block(document, content))
	}

	if len(blocks) == 0 {
		enriched.WireText = bareWireText(in)
		return enriched, notices
	}

	var wire strings.Builder

	for _, b := range blocks {
		wire.WriteString(b)
		wire.WriteString("\n")
	}

	wire.WriteString("User question:\n")
	wire.WriteString(in.text)
	wire.WriteString("\n\nAnswer using the notes above. If they do not contain the answer, say so instead of guessing.")

	enriched.WireText = wire.String()

	return enriched, notices
}

// bareWireText is the no-documents form: the raw input, with the rolling
// keyword summary appended once the conversation has history.
func bareWireText(in assembleInput) string {
	if len(in.state.Turns) == 0 || len(in.state.Keywords) == 0 {
		return in.text
	}

	return in.text + "\n\n(Earlier topics: " + strings.Join(in.state.Keywords, ", ") + ")"
}

var (
	dateName    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{2}-\d{2}-\d{4}$`)
	weekdayName = regexp.MustCompile(`(?i)\b(mon|tue|wed|thu|fri|sat|sun)\b`)
)

func isDailyNote(document vault.Document) bool {
	if dateName.MatchString(document.Name) {
		return true
	}

	name := strings.ToLower(document.Name)

	if strings.Contains(name, "daily") || strings.Contains(name, "journal") {
		return true
	}

	return weekdayName.MatchString(document.Name)
}

func block(document vault.Document, content string) string {
	header := fmt.Sprintf("File: `%s`:", document.Name)

	if isDailyNote(document) {
		header = fmt.Sprintf("Your daily note for `%s`:", document.Name)
	}

	return header + "\n```\n" + strings.TrimRight(content, "\n") + "\n```\n"
}
