package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	want := Message{Type: TypeSessionClosed, Body: []byte("session-42")}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-messages:
		if got.Type != want.Type || string(got.Body) != string(want.Body) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestInMemoryPublishRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewInMemory(0)
	if err := q.Publish(ctx, Message{Type: TypeSweep}); err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeSessionClosed, Body: []byte("abc|def")}
	got, err := deserialize(serialize(msg))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != msg.Type {
		t.Fatalf("type = %q, want %q", got.Type, msg.Type)
	}
	// Only the first separator splits; the body may contain more.
	if string(got.Body) != "abc|def" {
		t.Fatalf("body = %q, want %q", got.Body, "abc|def")
	}
}

func TestDeserializeWithoutSeparator(t *testing.T) {
	got, err := deserialize("bare")
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != "" || string(got.Body) != "bare" {
		t.Fatalf("got %+v", got)
	}
}
