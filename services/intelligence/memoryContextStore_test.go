package ai

import (
	"context"
	"testing"

	"frontdesk/models"
)

func TestMemoryContextStoreAppendAndGet(t *testing.T) {
	store := NewMemoryContextStore()
	ctx := context.Background()

	if err := store.Append(ctx, "s1", "caller: hi"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Append(ctx, "s1", "agent: hello"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Append(ctx, "other", "caller: unrelated"); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got.History) != 2 || got.History[0] != "caller: hi" || got.History[1] != "agent: hello" {
		t.Errorf("History = %v", got.History)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set on append")
	}
}

func TestMemoryContextStoreGetUnknownSession(t *testing.T) {
	store := NewMemoryContextStore()

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got.History) != 0 {
		t.Errorf("unknown session History = %v, want empty", got.History)
	}
}

func TestMemoryContextStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryContextStore()
	ctx := context.Background()

	if err := store.Append(ctx, "s1", "caller: hi"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	first, _ := store.Get(ctx, "s1")
	first.History[0] = "mutated"
	first.History = append(first.History, "extra")

	second, _ := store.Get(ctx, "s1")
	if len(second.History) != 1 || second.History[0] != "caller: hi" {
		t.Errorf("stored history changed through a returned copy: %v", second.History)
	}
}

func TestMemoryContextStoreClear(t *testing.T) {
	store := NewMemoryContextStore()
	ctx := context.Background()

	if err := store.Append(ctx, "s1", "caller: hi"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got.History) != 0 {
		t.Errorf("History after Clear = %v", got.History)
	}
}

func TestConversationContextTail(t *testing.T) {
	c := &models.ConversationContext{History: []string{"a", "b", "c", "d"}}

	if got := c.Tail(2); len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Errorf("Tail(2) = %v", got)
	}
	if got := c.Tail(10); len(got) != 4 {
		t.Errorf("Tail(10) = %v, want all four lines", got)
	}
	if got := c.Tail(0); got != nil {
		t.Errorf("Tail(0) = %v, want nil", got)
	}
	if got := (&models.ConversationContext{}).Tail(3); got != nil {
		t.Errorf("Tail on empty history = %v, want nil", got)
	}
}
