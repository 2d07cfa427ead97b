package vault

import (
	"time"
)

// Candidates returns the names a daily note for the given day may live under,
// in the order they are tried.
func Candidates(date time.Time) []string {
	iso := date.Format("2006-01-02")

	return []string{
		iso,
		date.Format("01-02-2006"),
		"daily/" + iso,
		"journal/" + iso,
	}
}

// Locate finds the daily note for a day, trying each naming convention in
// turn. A corpus without a note for that day reports ok false; content is
// never invented for a missing note.
func Locate(index *Index, date time.Time) (Document, bool) {
	for _, candidate := range Candidates(date) {
		if document, ok := index.Lookup(candidate); ok {
			return document, true
		}
	}

	return Document{}, false
}
