package session

import (
	"fmt"
	"testing"

	"github.com/aihorizon/horizon/internal/core/domain"
)

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	store := NewStore(0)
	if got := store.History("nope"); len(got) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(got))
	}
}

func TestAppendKeepsChronologicalOrder(t *testing.T) {
	store := NewStore(0)
	store.Append("s1", domain.RoleUser, "first question")
	store.Append("s1", domain.RoleAssistant, "first answer")
	store.Append("s1", domain.RoleUser, "second question")

	turns := store.History("s1")
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Content != "first question" || turns[2].Content != "second question" {
		t.Fatalf("turns out of order: %+v", turns)
	}
	if turns[1].Role != domain.RoleAssistant {
		t.Fatalf("expected assistant role on second turn, got %q", turns[1].Role)
	}
}

func TestAppendDropsBlankContent(t *testing.T) {
	store := NewStore(0)
	store.Append("s1", domain.RoleAssistant, "   \n\t")
	if got := store.History("s1"); len(got) != 0 {
		t.Fatalf("blank turn must not be recorded, got %+v", got)
	}
}

func TestAppendEvictsOldestBeyondCap(t *testing.T) {
	store := NewStore(4)
	for i := 0; i < 6; i++ {
		store.Append("s1", domain.RoleUser, fmt.Sprintf("turn %d", i))
	}

	turns := store.History("s1")
	if len(turns) != 4 {
		t.Fatalf("expected cap of 4, got %d", len(turns))
	}
	if turns[0].Content != "turn 2" || turns[3].Content != "turn 5" {
		t.Fatalf("expected oldest turns evicted, got first=%q last=%q", turns[0].Content, turns[3].Content)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	store := NewStore(0)
	store.Append("a", domain.RoleUser, "for a")
	store.Append("b", domain.RoleUser, "for b")

	if got := store.History("a"); len(got) != 1 || got[0].Content != "for a" {
		t.Fatalf("session a polluted: %+v", got)
	}
	if got := store.History("b"); len(got) != 1 || got[0].Content != "for b" {
		t.Fatalf("session b polluted: %+v", got)
	}
}
