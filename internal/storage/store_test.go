package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "mcp.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertMessageRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.InsertMessage(ctx, "Claude", "text", "hello there")
	if err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive message id, got %d", id)
	}

	if _, err := store.InsertInteraction(ctx, "Claude", "Gemini", id); err != nil {
		t.Fatalf("InsertInteraction: %v", err)
	}

	history, err := store.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 exchange, got %d", len(history))
	}

	got := history[0]
	if got.Message.Content != "hello there" {
		t.Fatalf("content mismatch: got %q", got.Message.Content)
	}
	if got.Message.ModelID != "Claude" {
		t.Fatalf("sender mismatch: got %q", got.Message.ModelID)
	}
	if got.Interaction.ReceiverID != "Gemini" {
		t.Fatalf("receiver mismatch: got %q", got.Interaction.ReceiverID)
	}
	if got.Interaction.MessageID != got.Message.ID {
		t.Fatalf("interaction references message %d, want %d", got.Interaction.MessageID, got.Message.ID)
	}
}

func TestHistoryOrderedByTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	senders := []string{"Claude", "Gemini", "ChatGPT", "Claude"}
	for i, sender := range senders {
		id, err := store.InsertMessage(ctx, sender, "text", "message")
		if err != nil {
			t.Fatalf("InsertMessage %d: %v", i, err)
		}
		if _, err := store.InsertInteraction(ctx, sender, "Gemini", id); err != nil {
			t.Fatalf("InsertInteraction %d: %v", i, err)
		}
	}

	history, err := store.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(senders) {
		t.Fatalf("expected %d exchanges, got %d", len(senders), len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Message.Timestamp.Before(history[i-1].Message.Timestamp) {
			t.Fatalf("timestamps out of order at %d", i)
		}
		if history[i].Message.ID <= history[i-1].Message.ID {
			t.Fatalf("insertion order broken at %d", i)
		}
	}
	for i, sender := range senders {
		if history[i].Message.ModelID != sender {
			t.Fatalf("exchange %d sender %q, want %q", i, history[i].Message.ModelID, sender)
		}
	}
}

func TestInteractionUnknownMessage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.InsertInteraction(ctx, "Claude", "Gemini", 4242)
	if !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected ErrUnknownMessage, got %v", err)
	}
}

func TestLatestFor(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	msg, err := store.LatestFor(ctx, "Gemini")
	if err != nil {
		t.Fatalf("LatestFor on empty store: %v", err)
	}
	if msg != nil {
		t.Fatalf("expected no message, got %+v", msg)
	}

	first, err := store.InsertMessage(ctx, "Claude", "text", "first")
	if err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
	if _, err := store.InsertInteraction(ctx, "Claude", "Gemini", first); err != nil {
		t.Fatalf("InsertInteraction: %v", err)
	}
	second, err := store.InsertMessage(ctx, "ChatGPT", "text", "second")
	if err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
	if _, err := store.InsertInteraction(ctx, "ChatGPT", "Gemini", second); err != nil {
		t.Fatalf("InsertInteraction: %v", err)
	}

	msg, err = store.LatestFor(ctx, "Gemini")
	if err != nil {
		t.Fatalf("LatestFor: %v", err)
	}
	if msg == nil || msg.Content != "second" {
		t.Fatalf("expected latest message %q, got %+v", "second", msg)
	}

	msg, err = store.LatestFor(ctx, "Claude")
	if err != nil {
		t.Fatalf("LatestFor: %v", err)
	}
	if msg != nil {
		t.Fatalf("Claude received nothing, got %+v", msg)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Clear on an empty store must not fail.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}

	id, err := store.InsertMessage(ctx, "Claude", "text", "to be cleared")
	if err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
	if _, err := store.InsertInteraction(ctx, "Claude", "Gemini", id); err != nil {
		t.Fatalf("InsertInteraction: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	history, err := store.History(ctx)
	if err != nil {
		t.Fatalf("History after clear: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d exchanges", len(history))
	}

	msgs, inters, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if msgs != 0 || inters != 0 {
		t.Fatalf("expected 0/0 after clear, got %d/%d", msgs, inters)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestInsertMessageValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertMessage(ctx, "", "text", "content"); err == nil {
		t.Fatal("expected error for empty model id")
	}
	if _, err := store.InsertMessage(ctx, "Claude", "text", ""); err == nil {
		t.Fatal("expected error for empty content")
	}
}
