package inbox

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"echobox/internal/domain"
)

// wireRecord is the loosely typed message representation delivered by the
// service. id, is_read, file_size, and created_at are kept as raw JSON so
// that numeric/string/bool variants degrade per field instead of failing
// the whole batch.
type wireRecord struct {
	ID        json.RawMessage `json:"id"`
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	CreatedAt json.RawMessage `json:"created_at"`
	IsRead    json.RawMessage `json:"is_read"`
	FileName  string          `json:"file_name"`
	FileSize  json.RawMessage `json:"file_size"`
}

// createdAtLayouts are tried in order for string timestamps.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// normalizeRecord converts one wire record into a Message. It never fails:
// malformed fields fall back to safe defaults (empty content, zero time,
// unread, size 0). File metadata and the media locator are attached iff
// the mapped kind is not Text.
func normalizeRecord(baseURL string, rec wireRecord) domain.Message {
	id := coerceID(rec.ID)
	kind := domain.KindFromWire(rec.Type)

	msg := domain.Message{
		ID:        id,
		Kind:      kind,
		Content:   rec.Text,
		CreatedAt: parseCreatedAt(rec.CreatedAt),
		IsRead:    isReadFlag(rec.IsRead),
	}

	if kind != domain.KindText {
		name := rec.FileName
		if name == "" {
			name = rec.Type + "_file." + domain.ExtensionForWire(rec.Type)
		}
		locator := ""
		if id != "" {
			locator = baseURL + "/get-media/" + id
		}
		msg.File = &domain.FileAttachment{
			Name:    name,
			Size:    fileSize(rec.FileSize),
			Locator: locator,
		}
	}

	return msg
}

// coerceID turns a wire id (string or number) into a string key. Absent
// or null ids coerce to "".
func coerceID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Number: the JSON token is already the canonical string form.
	return string(raw)
}

// isReadFlag is true only for the exact JSON token 1. The service encodes
// read state as 0/1; "1", true, or 1.0 all count as unread.
func isReadFlag(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("1"))
}

func fileSize(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// parseCreatedAt accepts an RFC3339(-ish) string or an epoch number
// (milliseconds above 1e11, seconds otherwise). Unparseable timestamps
// yield the zero time; display ordering must not assume the service sorts.
func parseCreatedAt(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range createdAtLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}

	if epoch, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		if epoch > 1e11 {
			return time.UnixMilli(epoch)
		}
		return time.Unix(epoch, 0)
	}
	return time.Time{}
}
