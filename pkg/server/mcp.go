package server

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"daybook/config"
	"daybook/pkg/chat"
	"daybook/pkg/temporal"
	"daybook/pkg/vault"
)

// MCP serves the resolution engine as Model Context Protocol tools over
// stdio, for hosts that speak MCP instead of HTTP.
type MCP struct {
	service *chat.Service
	catalog *vault.Catalog
	server  *mcp.Server
}

// NewMCP builds the MCP surface from the parsed configuration.
func NewMCP(cfg *config.Config, version string) *MCP {
	m := &MCP{
		service: cfg.Service,
		catalog: cfg.Catalog,
	}

	m.server = mcp.NewServer(&mcp.Implementation{
		Name:    "daybook",
		Version: version,
	}, nil)

	mcp.AddTool(m.server, &mcp.Tool{
		Name:        "resolve_message",
		Description: "Resolve @ mentions and temporal phrases in a chat message against the vault, returning the enriched prompt without calling a model",
	}, m.resolveMessage)

	mcp.AddTool(m.server, &mcp.Tool{
		Name:        "locate_note",
		Description: "Find the daily note a temporal expression refers to, such as 'yesterday' or 'last friday'",
	}, m.locateNote)

	mcp.AddTool(m.server, &mcp.Tool{
		Name:        "suggest_documents",
		Description: "Suggest vault documents matching a partial name",
	}, m.suggestDocuments)

	mcp.AddTool(m.server, &mcp.Tool{
		Name:        "refresh_index",
		Description: "Rebuild the vault index and report its size",
	}, m.refreshIndex)

	return m
}

// Run serves MCP over stdio until the context is canceled.
func (m *MCP) Run(ctx context.Context) error {
	return m.server.Run(ctx, &mcp.StdioTransport{})
}

type resolveMessageArgs struct {
	Message        string `json:"message" jsonschema:"the chat message to resolve"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"optional conversation whose topics provide fallback context"`
}

type resolveMessageResult struct {
	WireText    string        `json:"wire_text"`
	DisplayText string        `json:"display_text"`
	Referenced  []string      `json:"referenced,omitempty"`
	Notices     []chat.Notice `json:"notices,omitempty"`
}

func (m *MCP) resolveMessage(ctx context.Context, req *mcp.CallToolRequest, args resolveMessageArgs) (*mcp.CallToolResult, any, error) {
	enriched, notices, err := m.service.Enrich(ctx, chat.SendInput{
		ConversationID: args.ConversationID,
		Text:           args.Message,
	})

	if err != nil {
		return nil, nil, err
	}

	return nil, resolveMessageResult{
		WireText:    enriched.WireText,
		DisplayText: enriched.DisplayText,
		Referenced:  enriched.Referenced,
		Notices:     notices,
	}, nil
}

type locateNoteArgs struct {
	Expression string `json:"expression" jsonschema:"a temporal expression such as 'yesterday', 'last friday', or 'what happened on 2024-01-05'"`
}

type locateNoteResult struct {
	Found   bool   `json:"found"`
	Date    string `json:"date,omitempty"`
	Name    string `json:"name,omitempty"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
}

func (m *MCP) locateNote(ctx context.Context, req *mcp.CallToolRequest, args locateNoteArgs) (*mcp.CallToolResult, any, error) {
	date, ok := temporal.Resolve(args.Expression, time.Now())

	if !ok {
		return nil, locateNoteResult{}, nil
	}

	index, err := m.catalog.Index(ctx)

	if err != nil {
		return nil, nil, err
	}

	document, ok := vault.Locate(index, date)

	if !ok {
		return nil, locateNoteResult{Date: temporal.Format(date)}, nil
	}

	content, err := m.catalog.Read(ctx, document)

	if err != nil {
		return nil, nil, err
	}

	return nil, locateNoteResult{
		Found:   true,
		Date:    temporal.Format(date),
		Name:    document.Name,
		Path:    document.Path,
		Content: content,
	}, nil
}

type suggestDocumentsArgs struct {
	Query string `json:"query" jsonschema:"a partial document name"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions, default 10"`
}

type suggestDocumentsResult struct {
	Suggestions []string `json:"suggestions"`
}

func (m *MCP) suggestDocuments(ctx context.Context, req *mcp.CallToolRequest, args suggestDocumentsArgs) (*mcp.CallToolResult, any, error) {
	index, err := m.catalog.Index(ctx)

	if err != nil {
		return nil, nil, err
	}

	suggestions := []string{}

	for _, document := range index.Suggest(args.Query, args.Limit) {
		suggestions = append(suggestions, document.Name)
	}

	return nil, suggestDocumentsResult{Suggestions: suggestions}, nil
}

type refreshIndexArgs struct{}

type refreshIndexResult struct {
	Documents int `json:"documents"`
}

func (m *MCP) refreshIndex(ctx context.Context, req *mcp.CallToolRequest, args refreshIndexArgs) (*mcp.CallToolResult, any, error) {
	index, err := m.catalog.Refresh(ctx)

	if err != nil {
		return nil, nil, err
	}

	return nil, refreshIndexResult{Documents: index.Len()}, nil
}
