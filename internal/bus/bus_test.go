package bus

import (
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"echobox/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func event(id string) domain.InboxEvent {
	return domain.InboxEvent{Message: domain.Message{ID: id, Kind: domain.KindText}}
}

func TestPublishSubscribe(t *testing.T) {
	b := New(10, testLogger())
	defer b.Close()

	b.Publish(event("m1"))
	b.Publish(event("m2"))

	select {
	case ev := <-b.Subscribe():
		if ev.Message.ID != "m1" {
			t.Errorf("first event = %q", ev.Message.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	select {
	case ev := <-b.Subscribe():
		if ev.Message.ID != "m2" {
			t.Errorf("second event = %q", ev.Message.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("second event not delivered")
	}
}

func TestSendTo_RoutesToHandler(t *testing.T) {
	b := New(10, testLogger())
	defer b.Close()

	var got []string
	b.OnEvent("telegram", func(ev domain.InboxEvent) {
		got = append(got, "telegram:"+ev.Message.ID)
	})
	b.OnEvent("slack", func(ev domain.InboxEvent) {
		got = append(got, "slack:"+ev.Message.ID)
	})

	b.SendTo("telegram", event("m1"))
	b.SendTo("slack", event("m2"))
	// Unregistered channel is a logged no-op.
	b.SendTo("discord", event("m3"))

	want := []string{"telegram:m1", "slack:m2"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("deliveries = %v", got)
	}
}

func TestChannels(t *testing.T) {
	b := New(10, testLogger())
	defer b.Close()

	b.OnEvent("telegram", func(domain.InboxEvent) {})
	b.OnEvent("discord", func(domain.InboxEvent) {})

	names := b.Channels()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "discord" || names[1] != "telegram" {
		t.Errorf("channels = %v", names)
	}
}

func TestPublishAfterClose(t *testing.T) {
	b := New(10, testLogger())
	b.Close()
	// Must not panic on the closed channel.
	b.Publish(event("m1"))
	// Double close is also safe.
	b.Close()
}
