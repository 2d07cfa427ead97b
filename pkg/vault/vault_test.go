package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testVault(t *testing.T) *FS {
	t.Helper()

	root := t.TempDir()

	writeNote(t, root, "ProjectPlan.md", "plan contents")
	writeNote(t, root, "Daily Log.md", "log contents")
	writeNote(t, root, "daily/2024-01-02.md", "yesterday contents")
	writeNote(t, root, "journal/2024-01-05.md", "journal contents")
	writeNote(t, root, "notes.txt", "text contents")
	writeNote(t, root, "ignored.pdf", "binary")
	writeNote(t, root, ".obsidian/workspace.md", "hidden")

	provider, err := NewFS(root)
	require.NoError(t, err)

	return provider
}

func TestFSList(t *testing.T) {
	provider := testVault(t)

	documents, err := provider.List(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 5)

	index := NewIndex(documents)

	document, ok := index.Lookup("ProjectPlan")
	require.True(t, ok)
	require.Equal(t, "ProjectPlan.md", document.Path)

	_, ok = index.Lookup("ignored")
	require.False(t, ok)

	_, ok = index.Lookup("workspace")
	require.False(t, ok)
}

func TestFSRead(t *testing.T) {
	provider := testVault(t)

	content, err := provider.Read(context.Background(), Document{Name: "ProjectPlan", Path: "ProjectPlan.md"})
	require.NoError(t, err)
	require.Equal(t, "plan contents", content)

	_, err = provider.Read(context.Background(), Document{Name: "missing", Path: "missing.md"})
	require.Error(t, err)

	_, err = provider.Read(context.Background(), Document{Name: "evil", Path: "../evil.md"})
	require.Error(t, err)
}

func TestNewFSValidation(t *testing.T) {
	_, err := NewFS("")
	require.Error(t, err)
}

func TestIndexLookup(t *testing.T) {
	index := NewIndex([]Document{
		{Name: "ProjectPlan", Path: "ProjectPlan.md"},
		{Name: "2024-01-02", Path: "daily/2024-01-02.md"},
	})

	document, ok := index.Lookup("projectplan")
	require.True(t, ok)
	require.Equal(t, "ProjectPlan", document.Name)

	document, ok = index.Lookup("daily/2024-01-02")
	require.True(t, ok)
	require.Equal(t, "2024-01-02", document.Name)

	_, ok = index.Lookup("nope")
	require.False(t, ok)
}

func TestIndexMatch(t *testing.T) {
	index := NewIndex([]Document{
		{Name: "Alpha Notes", Path: "Alpha Notes.md"},
		{Name: "Beta", Path: "Beta.md"},
		{Name: "Roadmap", Path: "Roadmap.md"},
	})

	document, kind := index.Match("beta")
	require.Equal(t, MatchExact, kind)
	require.Equal(t, "Beta", document.Name)

	// Token contained in a name.
	document, kind = index.Match("alpha")
	require.Equal(t, MatchFuzzy, kind)
	require.Equal(t, "Alpha Notes", document.Name)

	// Name contained in a token.
	document, kind = index.Match("the roadmap file")
	require.Equal(t, MatchFuzzy, kind)
	require.Equal(t, "Roadmap", document.Name)

	_, kind = index.Match("nothing")
	require.Equal(t, MatchNone, kind)
}

func TestIndexMatchDeterministic(t *testing.T) {
	forward := NewIndex([]Document{
		{Name: "Plan A", Path: "Plan A.md"},
		{Name: "Plan B", Path: "Plan B.md"},
	})

	reversed := NewIndex([]Document{
		{Name: "Plan B", Path: "Plan B.md"},
		{Name: "Plan A", Path: "Plan A.md"},
	})

	document, kind := forward.Match("plan")
	require.Equal(t, MatchFuzzy, kind)
	require.Equal(t, "Plan A", document.Name)

	document, kind = reversed.Match("plan")
	require.Equal(t, MatchFuzzy, kind)
	require.Equal(t, "Plan A", document.Name)
}

func TestIndexSuggest(t *testing.T) {
	index := NewIndex([]Document{
		{Name: "Plan A", Path: "Plan A.md"},
		{Name: "Plan B", Path: "Plan B.md"},
		{Name: "Master Plan", Path: "Master Plan.md"},
	})

	matches := index.Suggest("plan", 10)
	require.Len(t, matches, 3)
	require.Equal(t, "Plan A", matches[0].Name)
	require.Equal(t, "Plan B", matches[1].Name)
	require.Equal(t, "Master Plan", matches[2].Name)

	matches = index.Suggest("plan", 2)
	require.Len(t, matches, 2)

	matches = index.Suggest("zzz", 10)
	require.Empty(t, matches)
}

func TestCandidates(t *testing.T) {
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	require.Equal(t, []string{
		"2024-01-05",
		"01-05-2024",
		"daily/2024-01-05",
		"journal/2024-01-05",
	}, Candidates(date))
}

func TestLocate(t *testing.T) {
	provider := testVault(t)

	documents, err := provider.List(context.Background())
	require.NoError(t, err)

	index := NewIndex(documents)

	document, ok := Locate(index, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, "daily/2024-01-02.md", document.Path)

	document, ok = Locate(index, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, "journal/2024-01-05.md", document.Path)

	_, ok = Locate(index, time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.False(t, ok)
}

func TestCatalog(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "First.md", "first")

	provider, err := NewFS(root)
	require.NoError(t, err)

	catalog := NewCatalog(provider)

	index, err := catalog.Index(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())

	writeNote(t, root, "Second.md", "second")

	// Snapshot is stable until invalidated.
	index, err = catalog.Index(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())

	catalog.Invalidate()

	index, err = catalog.Index(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, index.Len())

	content, err := catalog.Read(context.Background(), index.Documents()[1])
	require.NoError(t, err)
	require.Equal(t, "second", content)
}
