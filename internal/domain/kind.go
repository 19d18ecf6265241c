package domain

// MessageKind is the closed set of supported message content types. The
// string values double as the outbound submission discriminator, which is
// why Voice is "voice" even though the service delivers it as "audio".
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindImage    MessageKind = "image"
	KindVoice    MessageKind = "voice"
	KindDocument MessageKind = "document"
)

// Inbound wire vocabulary used by the remote inbox service.
const (
	WireText     = "text"
	WireImage    = "image"
	WireAudio    = "audio"
	WireDocument = "document"
)

// KindFromWire maps the service's wire vocabulary to a MessageKind.
// "audio" deliberately becomes Voice. Unrecognized values default to Text
// rather than failing; every kind translation in the codebase must go
// through here.
func KindFromWire(wire string) MessageKind {
	switch wire {
	case WireText:
		return KindText
	case WireImage:
		return KindImage
	case WireDocument:
		return KindDocument
	case WireAudio:
		return KindVoice
	default:
		return KindText
	}
}

// ExtensionForWire returns the default file extension for a wire kind,
// used when the service omits a file name. Unknown kinds yield "".
func ExtensionForWire(wire string) string {
	switch wire {
	case WireImage:
		return "jpg"
	case WireDocument:
		return "pdf"
	case WireAudio:
		return "mp3"
	default:
		return ""
	}
}

func (k MessageKind) String() string { return string(k) }
