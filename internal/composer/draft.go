package composer

import "echobox/internal/domain"

// FileInput is the composer's view of a selected file or recorded audio
// clip: a name and its bytes. How the bytes were obtained (file picker,
// recorder) is the caller's concern.
type FileInput struct {
	Name string
	Data []byte
}

// Draft is the sender's in-progress message. It is a tagged variant:
// the constructors are the only way to populate it, so exactly one kind's
// data can ever be present and a tab switch cannot leak fields from a
// previously active kind.
type Draft struct {
	kind domain.MessageKind

	text        string
	file        *FileInput // image and document kinds
	caption     string     // image kind, optional
	description string     // document kind, optional
	audio       *FileInput // voice kind
}

// NewTextDraft starts a plain text message.
func NewTextDraft(text string) Draft {
	return Draft{kind: domain.KindText, text: text}
}

// NewImageDraft starts an image message with an optional caption.
func NewImageDraft(file FileInput, caption string) Draft {
	return Draft{kind: domain.KindImage, file: &file, caption: caption}
}

// NewVoiceDraft starts a voice message from a recorded clip.
func NewVoiceDraft(audio FileInput) Draft {
	return Draft{kind: domain.KindVoice, audio: &audio}
}

// NewDocumentDraft starts a document message with an optional description.
func NewDocumentDraft(file FileInput, description string) Draft {
	return Draft{kind: domain.KindDocument, file: &file, description: description}
}

// Kind reports which tab the draft belongs to.
func (d Draft) Kind() domain.MessageKind { return d.kind }

// Summary returns a short human-readable description of the draft's
// content, used for the local sent log.
func (d Draft) Summary() string {
	switch d.kind {
	case domain.KindText:
		return d.text
	case domain.KindImage, domain.KindDocument:
		if d.file != nil {
			return d.file.Name
		}
	case domain.KindVoice:
		if d.audio != nil {
			return d.audio.Name
		}
	}
	return ""
}

// empty reports whether the active kind's required content is missing.
func (d Draft) empty() bool {
	switch d.kind {
	case domain.KindText:
		return d.text == ""
	case domain.KindImage, domain.KindDocument:
		return d.file == nil || len(d.file.Data) == 0
	case domain.KindVoice:
		return d.audio == nil || len(d.audio.Data) == 0
	default:
		return true
	}
}
