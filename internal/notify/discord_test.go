package notify

import (
	"strings"
	"testing"
)

func TestSplitMessage_ShortPassesThrough(t *testing.T) {
	chunks := splitMessage("hello", 2000)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestSplitMessage_ChunksAtLimit(t *testing.T) {
	text := strings.Repeat("a", 45)
	chunks := splitMessage(text, 20)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	var rebuilt strings.Builder
	for _, c := range chunks {
		if len(c) > 20 {
			t.Errorf("chunk exceeds limit: %d bytes", len(c))
		}
		rebuilt.WriteString(c)
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reassemble to the original")
	}
}

func TestSplitMessage_PrefersNewlineBoundary(t *testing.T) {
	text := strings.Repeat("a", 15) + "\n" + strings.Repeat("b", 15)
	chunks := splitMessage(text, 20)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %v", chunks)
	}
	if !strings.HasSuffix(chunks[0], "\n") {
		t.Errorf("first chunk should end at the newline, got %q", chunks[0])
	}
}
