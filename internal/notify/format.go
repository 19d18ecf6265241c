package notify

import (
	"fmt"
	"unicode/utf8"

	"echobox/internal/domain"

	"github.com/dustin/go-humanize"
)

const previewLen = 100

// Summary renders one inbox event as the short text pushed to every
// notification channel.
func Summary(m domain.Message) string {
	age := ""
	if !m.CreatedAt.IsZero() {
		age = " · " + humanize.Time(m.CreatedAt)
	}

	switch m.Kind {
	case domain.KindText:
		return fmt.Sprintf("New anonymous message%s\n%s", age, Preview(m))
	case domain.KindImage:
		return fmt.Sprintf("New anonymous image%s\n%s", age, fileDetail(m))
	case domain.KindVoice:
		return fmt.Sprintf("New anonymous voice note%s\n%s", age, fileDetail(m))
	case domain.KindDocument:
		return fmt.Sprintf("New anonymous document%s\n%s", age, fileDetail(m))
	default:
		return fmt.Sprintf("New anonymous message%s", age)
	}
}

func fileDetail(m domain.Message) string {
	if m.File == nil {
		return "File attachment"
	}
	return fmt.Sprintf("%s (%s)", m.File.Name, humanize.Bytes(uint64(m.File.Size)))
}

// Preview returns the listing preview for a message: text bodies truncate
// at 100 characters, file kinds show the file name.
func Preview(m domain.Message) string {
	if m.Kind != domain.KindText {
		if m.File != nil && m.File.Name != "" {
			return m.File.Name
		}
		return "File attachment"
	}
	if utf8.RuneCountInString(m.Content) <= previewLen {
		return m.Content
	}
	runes := []rune(m.Content)
	return string(runes[:previewLen]) + "..."
}
