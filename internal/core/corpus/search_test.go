package corpus

import (
	"testing"

	"github.com/aihorizon/horizon/internal/core/domain"
)

func newSeededStore(artifacts ...domain.Artifact) *Store {
	store := NewStore(nil, "")
	store.artifacts = artifacts
	return store
}

func TestSearchRanksTaskIDAboveTitle(t *testing.T) {
	taskHit := domain.Artifact{
		ID:    "a",
		Title: "Unrelated title",
		DCWFTasks: []domain.TaskMapping{
			{TaskID: "AN-T1019", TaskName: "Threat analysis"},
		},
	}
	titleHit := domain.Artifact{
		ID:    "b",
		Title: "Discussion of AN-T1019 automation",
	}
	noHit := domain.Artifact{
		ID:    "c",
		Title: "Cooking recipes",
	}
	store := newSeededStore(taskHit, titleHit, noHit)

	results := store.Search("AN-T1019", 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Fatalf("expected [a b], got [%s %s]", results[0].ID, results[1].ID)
	}
}

func TestSearchSingleTaskIDArtifact(t *testing.T) {
	store := newSeededStore(
		domain.Artifact{
			ID:        "only",
			Title:     "Evidence",
			DCWFTasks: []domain.TaskMapping{{TaskID: "T0123"}},
		},
		domain.Artifact{ID: "other", Title: "Nothing relevant"},
	)

	results := store.Search("T0123", 5)
	if len(results) != 1 || results[0].ID != "only" {
		t.Fatalf("expected sole result 'only', got %+v", results)
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	store := newSeededStore(domain.Artifact{ID: "a", Title: "anything"})
	if got := store.Search("   ", 5); got != nil {
		t.Fatalf("expected nil for empty query, got %v", got)
	}
}

func TestSearchTieKeepsInsertionOrder(t *testing.T) {
	first := domain.Artifact{ID: "first", Title: "zero trust architecture"}
	second := domain.Artifact{ID: "second", Title: "zero trust architecture"}
	store := newSeededStore(first, second)

	results := store.Search("zero trust", 5)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "first" || results[1].ID != "second" {
		t.Fatalf("equal scores must preserve insertion order, got [%s %s]", results[0].ID, results[1].ID)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	store := newSeededStore(
		domain.Artifact{ID: "a", Title: "phishing detection"},
		domain.Artifact{ID: "b", Title: "phishing detection"},
		domain.Artifact{ID: "c", Title: "phishing detection"},
	)
	if got := store.Search("phishing", 2); len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
}

func TestExtractTaskIDs(t *testing.T) {
	ids := ExtractTaskIDs("compare an-t1019 with OM-ADM please")
	if len(ids) != 2 {
		t.Fatalf("expected 2 identifiers, got %v", ids)
	}
	if ids[0] != "AN-T1019" || ids[1] != "OM-ADM" {
		t.Fatalf("unexpected identifiers: %v", ids)
	}
}
