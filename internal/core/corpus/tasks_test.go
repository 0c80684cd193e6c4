package corpus

import (
	"testing"

	"github.com/aihorizon/horizon/internal/core/domain"
)

func taskCorpus() *Store {
	return newSeededStore(
		domain.Artifact{
			ID:             "r1",
			Title:          "SOC automation study",
			Classification: domain.ClassificationReplace,
			Confidence:     0.9,
			WorkRoles:      []string{"Cyber Defense Analyst"},
			AITools:        []string{"ChatGPT"},
			DCWFTasks: []domain.TaskMapping{
				{TaskID: "AN-T1019", TaskName: "Threat analysis", ImpactDescription: "Alert triage automated"},
			},
		},
		domain.Artifact{
			ID:             "r2",
			Title:          "Another replace case",
			Classification: domain.ClassificationReplace,
			Confidence:     0.8,
			WorkRoles:      []string{"SOC Analyst"},
			DCWFTasks: []domain.TaskMapping{
				{TaskID: "AN-T1019", TaskName: "Threat analysis", ImpactDescription: "Full triage pipeline"},
				{TaskID: "PR-T0260", TaskName: "Log review", ImpactDescription: "Automated log review"},
			},
		},
		domain.Artifact{
			ID:             "a1",
			Title:          "Augment case",
			Classification: domain.ClassificationAugment,
			Confidence:     0.7,
			WorkRoles:      []string{"Security Architect"},
			DCWFTasks: []domain.TaskMapping{
				{TaskID: "SP-T0484", TaskName: "Architecture review", ImpactDescription: "Copilot assists"},
			},
		},
		domain.Artifact{
			ID:             "h1",
			Classification: domain.ClassificationRemainHuman,
			DCWFTasks:      []domain.TaskMapping{{TaskID: "OV-T0001", TaskName: "Governance"}},
		},
		domain.Artifact{
			ID:             "h2",
			Classification: domain.ClassificationRemainHuman,
			DCWFTasks:      []domain.TaskMapping{{TaskID: "OV-T0002", TaskName: "Policy"}},
		},
	)
}

func TestSearchTasksClassificationFilterWithEmptyQuery(t *testing.T) {
	store := taskCorpus()

	results := store.SearchTasks("", domain.SearchFilter{Classification: "Replace"}, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 task rows, got %d", len(results))
	}
	for _, row := range results {
		if row.TaskID != "AN-T1019" && row.TaskID != "PR-T0260" {
			t.Fatalf("unexpected task from non-Replace artifact: %s", row.TaskID)
		}
	}
}

func TestSearchTasksGroupsEvidence(t *testing.T) {
	store := taskCorpus()

	results := store.SearchTasks("", domain.SearchFilter{Classification: "replace"}, 10)
	if results[0].TaskID != "AN-T1019" {
		t.Fatalf("expected AN-T1019 first by evidence count, got %s", results[0].TaskID)
	}
	if results[0].EvidenceCount != 2 {
		t.Fatalf("expected evidence count 2, got %d", results[0].EvidenceCount)
	}
	if len(results[0].WorkRoles) != 2 {
		t.Fatalf("expected unioned work roles, got %v", results[0].WorkRoles)
	}
}

func TestSearchTasksQueryWordGate(t *testing.T) {
	store := taskCorpus()

	results := store.SearchTasks("triage", domain.SearchFilter{}, 10)
	for _, row := range results {
		if row.TaskID != "AN-T1019" {
			t.Fatalf("word gate let through %s", row.TaskID)
		}
	}
	if len(results) != 1 {
		t.Fatalf("expected only the triage task, got %d rows", len(results))
	}
}

func TestSearchTasksAIToolFilter(t *testing.T) {
	store := taskCorpus()

	results := store.SearchTasks("", domain.SearchFilter{AITool: "chatgpt"}, 10)
	if len(results) != 1 || results[0].TaskID != "AN-T1019" {
		t.Fatalf("expected AN-T1019 from the ChatGPT artifact, got %+v", results)
	}
	if results[0].EvidenceCount != 1 {
		t.Fatalf("filtered-out artifacts must not contribute evidence, got %d", results[0].EvidenceCount)
	}
}

func TestSearchTasksTaskIDFilter(t *testing.T) {
	store := taskCorpus()

	results := store.SearchTasks("", domain.SearchFilter{TaskID: "T0260"}, 10)
	if len(results) != 1 || results[0].TaskID != "PR-T0260" {
		t.Fatalf("expected PR-T0260, got %+v", results)
	}
}
