package chat

// NoticeKind classifies a non-fatal resolution event.
type NoticeKind string

const (
	// NoticeUnresolved reports a mention that matched no document.
	NoticeUnresolved NoticeKind = "unresolved_reference"

	// NoticeReadError reports a resolved document whose contents could not be
	// read. The document is skipped; the resolution continues.
	NoticeReadError NoticeKind = "read_error"
)

// Notice is surfaced to the caller alongside the reply. Notices never abort a
// resolution.
type Notice struct {
	Kind     NoticeKind `json:"kind"`
	Token    string     `json:"token,omitempty"`
	Document string     `json:"document,omitempty"`
	Message  string     `json:"message"`
}
