package domain

import "time"

// Message is one entry in the recipient's inbox, as normalized from the
// service's wire records. ID is assigned by the service and is the sole
// key for read/delete operations. Kind is fixed at creation.
type Message struct {
	ID        string
	Kind      MessageKind
	Content   string // text body; empty for non-text kinds
	CreatedAt time.Time
	IsRead    bool

	// File is set if and only if Kind != KindText. Keeping it a pointer
	// (rather than zero-valued fields) avoids ambiguous "empty file"
	// states on text messages.
	File *FileAttachment
}

// FileAttachment carries the metadata of a file-bearing message. The
// bytes themselves are fetched on demand through Locator.
type FileAttachment struct {
	Name    string
	Size    int64
	Locator string // retrieval URL; empty when the message id is unknown
}
