package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"daybook/config"
	"daybook/pkg/chat"
	"daybook/pkg/provider"
	"daybook/pkg/store"
	"daybook/pkg/vault"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &provider.Completion{Content: f.reply, Reason: "stop"}, nil
}

type blockingCompleter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCompleter) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	close(b.started)
	<-b.release

	return &provider.Completion{Content: "done", Reason: "stop"}, nil
}

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testServer(t *testing.T, completer provider.Completer) (*Server, string) {
	t.Helper()

	root := t.TempDir()

	writeNote(t, root, "ProjectPlan.md", "ship the beta")
	writeNote(t, root, "daily/2024-01-02.md", "reviewed the roadmap")

	fs, err := vault.NewFS(root)
	require.NoError(t, err)

	catalog := vault.NewCatalog(fs)

	st, err := store.NewFile(t.TempDir())
	require.NoError(t, err)

	service, err := chat.New(
		chat.WithCompleter(completer),
		chat.WithCatalog(catalog),
		chat.WithStore(st),
	)
	require.NoError(t, err)

	return New(&config.Config{
		Address: ":0",
		Service: service,
		Catalog: catalog,
	}), root
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	request := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()

	s.Handler().ServeHTTP(recorder, request)

	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&value))

	return value
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "ok"})

	recorder := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "ok", recorder.Body.String())
}

func TestChat(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "The plan is to ship the beta."})

	recorder := do(t, s, http.MethodPost, "/v1/chat", ChatRequest{
		Message: "@ProjectPlan what is the plan?",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decode[ChatResponse](t, recorder)

	require.Equal(t, "The plan is to ship the beta.", response.Reply)
	require.NotEmpty(t, response.ConversationID)
	require.Equal(t, []string{"ProjectPlan"}, response.Referenced)
	require.Equal(t, "what is the plan?", response.DisplayText)
}

func TestChatMissingMessage(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "ok"})

	recorder := do(t, s, http.MethodPost, "/v1/chat", ChatRequest{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	response := decode[ErrorResponse](t, recorder)
	require.Contains(t, response.Error, "missing message")
}

func TestChatProviderStatus(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{err: provider.NewError(429, "rate limited")})

	recorder := do(t, s, http.MethodPost, "/v1/chat", ChatRequest{
		Message: "hello there",
	})
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
}

func TestChatConflict(t *testing.T) {
	completer := &blockingCompleter{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	s, _ := testServer(t, completer)

	first := make(chan *httptest.ResponseRecorder)

	go func() {
		first <- do(t, s, http.MethodPost, "/v1/chat", ChatRequest{
			ConversationID: "busy-conversation",
			Message:        "first message",
		})
	}()

	<-completer.started

	recorder := do(t, s, http.MethodPost, "/v1/chat", ChatRequest{
		ConversationID: "busy-conversation",
		Message:        "second message",
	})
	require.Equal(t, http.StatusConflict, recorder.Code)

	close(completer.release)

	require.Equal(t, http.StatusOK, (<-first).Code)
}

func TestModels(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "ok"})

	recorder := do(t, s, http.MethodGet, "/v1/models", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decode[ModelsResponse](t, recorder)

	ids := []string{}

	for _, model := range response.Models {
		ids = append(ids, model.ID)
	}

	require.Contains(t, ids, "claude-sonnet-4-5")
	require.Contains(t, ids, "llama3.2")
}

func TestDocuments(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "ok"})

	recorder := do(t, s, http.MethodGet, "/v1/documents", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decode[DocumentsResponse](t, recorder)
	require.Len(t, response.Documents, 2)
}

func TestSuggest(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "ok"})

	recorder := do(t, s, http.MethodGet, "/v1/documents/suggest?q=pro", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decode[SuggestResponse](t, recorder)
	require.Equal(t, []string{"ProjectPlan"}, response.Suggestions)
}

func TestSuggestInvalidLimit(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "ok"})

	recorder := do(t, s, http.MethodGet, "/v1/documents/suggest?q=pro&limit=zero", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRefresh(t *testing.T) {
	s, root := testServer(t, &fakeCompleter{reply: "ok"})

	recorder := do(t, s, http.MethodGet, "/v1/documents", nil)
	require.Len(t, decode[DocumentsResponse](t, recorder).Documents, 2)

	writeNote(t, root, "Inbox.md", "follow up with the vendor")

	recorder = do(t, s, http.MethodPost, "/v1/index/refresh", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 3, decode[RefreshResponse](t, recorder).Documents)
}

func TestConversationLifecycle(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "Noted."})

	recorder := do(t, s, http.MethodGet, "/v1/conversations", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Empty(t, decode[ConversationsResponse](t, recorder).Conversations)

	recorder = do(t, s, http.MethodGet, "/v1/conversations/no-such-conversation", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = do(t, s, http.MethodPost, "/v1/chat", ChatRequest{
		Message: "remember the milk",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	id := decode[ChatResponse](t, recorder).ConversationID

	recorder = do(t, s, http.MethodGet, "/v1/conversations", nil)
	require.Equal(t, []string{id}, decode[ConversationsResponse](t, recorder).Conversations)

	recorder = do(t, s, http.MethodGet, "/v1/conversations/"+id, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	record := decode[ConversationResponse](t, recorder)
	require.Len(t, record.Turns, 2)
	require.Equal(t, "remember the milk", record.Turns[0].Content)

	recorder = do(t, s, http.MethodPost, "/v1/conversations/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	fresh := decode[ResetResponse](t, recorder).ConversationID
	require.NotEqual(t, id, fresh)

	recorder = do(t, s, http.MethodGet, "/v1/conversations/"+id, nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestChatSocket(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "Noted."})

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/chat/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	defer conn.Close()

	require.NoError(t, conn.WriteJSON(SocketFrame{Message: "hello there"}))

	var response ChatResponse
	require.NoError(t, conn.ReadJSON(&response))
	require.Equal(t, "Noted.", response.Reply)
	require.NotEmpty(t, response.ConversationID)

	require.NoError(t, conn.WriteJSON(SocketFrame{Reset: true}))

	var reset ResetResponse
	require.NoError(t, conn.ReadJSON(&reset))
	require.NotEqual(t, response.ConversationID, reset.ConversationID)
}

func TestChatSocketEmptyMessage(t *testing.T) {
	s, _ := testServer(t, &fakeCompleter{reply: "Noted."})

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/chat/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	defer conn.Close()

	require.NoError(t, conn.WriteJSON(SocketFrame{Message: "   "}))

	var response ErrorResponse
	require.NoError(t, conn.ReadJSON(&response))
	require.Contains(t, response.Error, "missing message")
}
