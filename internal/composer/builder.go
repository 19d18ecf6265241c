package composer

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"unicode/utf8"

	"echobox/internal/domain"
)

// Client-side limits. Advisory only: the remote service remains the
// authority on what it accepts.
const (
	MaxTextLen        = 1000
	MaxCaptionLen     = 200
	MaxDescriptionLen = 200
)

// ErrNothingToSend reports a draft whose active kind has no required
// content. It is a local condition, not a transport error; no network
// call is made.
var ErrNothingToSend = errors.New("no content to send")

// Payload is an assembled multipart submission: exactly one kind's fields
// plus the type discriminator.
type Payload struct {
	Kind        domain.MessageKind
	ContentType string
	Body        []byte
}

// Validate checks the draft against the client-side limits without
// touching the network.
func (d Draft) Validate() error {
	if d.empty() {
		return ErrNothingToSend
	}
	switch d.kind {
	case domain.KindText:
		if n := utf8.RuneCountInString(d.text); n > MaxTextLen {
			return fmt.Errorf("message is %d characters, limit is %d", n, MaxTextLen)
		}
	case domain.KindImage:
		if n := utf8.RuneCountInString(d.caption); n > MaxCaptionLen {
			return fmt.Errorf("caption is %d characters, limit is %d", n, MaxCaptionLen)
		}
	case domain.KindDocument:
		if n := utf8.RuneCountInString(d.description); n > MaxDescriptionLen {
			return fmt.Errorf("description is %d characters, limit is %d", n, MaxDescriptionLen)
		}
	}
	return nil
}

// Build validates the draft and assembles the multipart payload. Optional
// annotations (caption, description) are written only when non-empty.
func (d Draft) Build() (*Payload, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	switch d.kind {
	case domain.KindText:
		if err := w.WriteField("text", d.text); err != nil {
			return nil, fmt.Errorf("build payload: %w", err)
		}
	case domain.KindImage:
		if err := writeFilePart(w, "file", d.file); err != nil {
			return nil, err
		}
		if d.caption != "" {
			if err := w.WriteField("caption", d.caption); err != nil {
				return nil, fmt.Errorf("build payload: %w", err)
			}
		}
	case domain.KindVoice:
		if err := writeFilePart(w, "audio", d.audio); err != nil {
			return nil, err
		}
	case domain.KindDocument:
		if err := writeFilePart(w, "file", d.file); err != nil {
			return nil, err
		}
		if d.description != "" {
			if err := w.WriteField("description", d.description); err != nil {
				return nil, fmt.Errorf("build payload: %w", err)
			}
		}
	}

	if err := w.WriteField("type", d.kind.String()); err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}

	return &Payload{
		Kind:        d.kind,
		ContentType: w.FormDataContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func writeFilePart(w *multipart.Writer, field string, in *FileInput) error {
	part, err := w.CreateFormFile(field, in.Name)
	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}
	if _, err := part.Write(in.Data); err != nil {
		return fmt.Errorf("build payload: %w", err)
	}
	return nil
}
