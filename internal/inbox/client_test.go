package inbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"echobox/internal/composer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: testLogger()})
	return client, srv
}

func TestFetchMessages_Normalizes(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":1,"type":"text","text":"hi","is_read":1},
			{"id":2,"type":"image","is_read":0,"file_size":10}
		]`))
	}))

	messages, err := client.FetchMessages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if !messages[0].IsRead || messages[0].Content != "hi" {
		t.Errorf("first message mis-normalized: %+v", messages[0])
	}
	if messages[1].File == nil || messages[1].File.Locator != srv.URL+"/get-media/2" {
		t.Errorf("second message locator mis-derived: %+v", messages[1].File)
	}
}

func TestFetchMessages_ServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	messages, err := client.FetchMessages(context.Background())
	if err == nil {
		t.Fatal("HTTP 500 must surface as an error, not an empty inbox")
	}
	if messages != nil {
		t.Errorf("no messages should be returned on failure, got %v", messages)
	}
}

func TestMarkRead_PathAndStatus(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))

	if err := client.MarkRead(context.Background(), "42"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/read-message/42" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestMarkRead_ServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))

	if err := client.MarkRead(context.Background(), "42"); err == nil {
		t.Fatal("non-2xx mark-read must fail")
	}
}

func TestSubmit_DeliversMultipart(t *testing.T) {
	var gotType, gotText string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/send-message" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("payload is not multipart: %v", err)
			return
		}
		gotType = r.FormValue("type")
		gotText = r.FormValue("text")
	}))

	payload, err := composer.NewTextDraft("secret").Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Submit(context.Background(), payload); err != nil {
		t.Fatal(err)
	}
	if gotType != "text" || gotText != "secret" {
		t.Errorf("type=%q text=%q", gotType, gotText)
	}
}

func TestSubmit_ServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "full", http.StatusServiceUnavailable)
	}))

	payload, err := composer.NewTextDraft("secret").Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Submit(context.Background(), payload); err == nil {
		t.Fatal("non-2xx submit must fail")
	}
}

func TestFetchMedia(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/get-media/9" {
			w.Write([]byte("bytes"))
			return
		}
		http.NotFound(w, r)
	}))

	body, _, err := client.FetchMedia(context.Background(), srv.URL+"/get-media/9")
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "bytes" {
		t.Errorf("media = %q", data)
	}

	if _, _, err := client.FetchMedia(context.Background(), ""); err == nil {
		t.Error("empty locator must fail")
	}
}
