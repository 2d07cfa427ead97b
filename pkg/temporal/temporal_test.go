package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Wednesday.
var wednesday = time.Date(2024, time.January, 3, 15, 4, 5, 0, time.UTC)

func TestResolveYesterday(t *testing.T) {
	date, ok := Resolve("what did I do yesterday?", wednesday)
	require.True(t, ok)
	require.Equal(t, "2024-01-02", Format(date))

	date, ok = Resolve("show me yesterday's notes", wednesday)
	require.True(t, ok)
	require.Equal(t, "2024-01-02", Format(date))
}

func TestResolveToday(t *testing.T) {
	date, ok := Resolve("summarize today", wednesday)
	require.True(t, ok)
	require.Equal(t, "2024-01-03", Format(date))
}

func TestResolvePriority(t *testing.T) {
	// "yesterday" outranks every later category.
	date, ok := Resolve("compare yesterday with today and monday", wednesday)
	require.True(t, ok)
	require.Equal(t, "2024-01-02", Format(date))
}

func TestResolveLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"what happened on 2024-01-05", "2024-01-05"},
		{"tell me about 1/5/24", "2024-01-05"},
		{"tell me about 1/5/2024", "2024-01-05"},
		{"what happened on 12-31-2023", "2023-12-31"},
		{"tell me about 3/7", "2024-03-07"},
	}

	for _, test := range tests {
		date, ok := Resolve(test.input, wednesday)
		require.True(t, ok, test.input)
		require.Equal(t, test.want, Format(date), test.input)
	}
}

func TestResolveLiteralRoundTrip(t *testing.T) {
	date, ok := Resolve("what happened on 2024-01-05", wednesday)
	require.True(t, ok)
	require.Equal(t, "2024-01-05", Format(date))
}

func TestResolveInvalidLiteral(t *testing.T) {
	// A recognized literal that fails to parse resolves nothing, even when a
	// weekday name appears later in the text.
	_, ok := Resolve("what happened on 2024-13-05, maybe monday?", wednesday)
	require.False(t, ok)

	_, ok = Resolve("tell me about 2/30/2024", wednesday)
	require.False(t, ok)
}

func TestResolveWeekday(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"this monday", "2024-01-08"},
		{"last monday", "2024-01-01"},
		{"monday", "2024-01-01"},
		{"on friday", "2023-12-29"},
		{"this wednesday", "2024-01-03"},
		{"last wednesday", "2023-12-27"},
		{"what about Thursday", "2023-12-28"},
	}

	for _, test := range tests {
		date, ok := Resolve(test.input, wednesday)
		require.True(t, ok, test.input)
		require.Equal(t, test.want, Format(date), test.input)
	}
}

func TestResolveWeekdayDirect(t *testing.T) {
	date, ok := ResolveWeekday("monday", "this", wednesday)
	require.True(t, ok)
	require.Equal(t, wednesday.AddDate(0, 0, 5).Format("2006-01-02"), Format(date))

	date, ok = ResolveWeekday("monday", "last", wednesday)
	require.True(t, ok)
	require.Equal(t, wednesday.AddDate(0, 0, -2).Format("2006-01-02"), Format(date))

	_, ok = ResolveWeekday("noday", "last", wednesday)
	require.False(t, ok)
}

func TestResolveNoMatch(t *testing.T) {
	_, ok := Resolve("summarize the project plan", wednesday)
	require.False(t, ok)

	_, ok = Resolve("", wednesday)
	require.False(t, ok)
}
