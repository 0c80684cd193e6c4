package usecase

import (
	"fmt"
	"strings"

	"github.com/aihorizon/horizon/internal/core/corpus"
	"github.com/aihorizon/horizon/internal/core/domain"
)

var evidenceKeywords = []string{
	"task", "evidence", "dcwf", "work role", "workforce", "classification",
	"replace", "augment", "artifact", "registry", "analyst", "ai impact",
}

// detectEvidenceIntent gates the corpus lookup: context blocks are assembled
// only for questions that plausibly ask about stored evidence, keeping small
// talk cheap.
func detectEvidenceIntent(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range evidenceKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return len(corpus.ExtractTaskIDs(message)) > 0
}

const (
	contextMaxTasks    = 3
	contextMaxRoles    = 3
	contextMaxFindings = 2
)

// buildContext renders retrieved artifacts into the evidence block prepended
// to the chat prompt.
func buildContext(artifacts []domain.Artifact) string {
	if len(artifacts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Evidence from the local registry:\n\n")
	for i, artifact := range artifacts {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, artifact.Title)
		if artifact.Classification != "" {
			fmt.Fprintf(&b, "Classification: %s (confidence %.0f%%)\n",
				artifact.Classification, artifact.Confidence*100)
		}
		if artifact.Rationale != "" {
			fmt.Fprintf(&b, "Rationale: %s\n", artifact.Rationale)
		}
		for j, task := range artifact.DCWFTasks {
			if j == contextMaxTasks {
				break
			}
			fmt.Fprintf(&b, "Task %s: %s\n", task.TaskID, task.ImpactDescription)
		}
		if len(artifact.WorkRoles) > 0 {
			roles := artifact.WorkRoles
			if len(roles) > contextMaxRoles {
				roles = roles[:contextMaxRoles]
			}
			fmt.Fprintf(&b, "Work roles: %s\n", strings.Join(roles, ", "))
		}
		for j, finding := range artifact.KeyFindings {
			if j == contextMaxFindings {
				break
			}
			fmt.Fprintf(&b, "Finding: %s\n", finding)
		}
		if artifact.SourceURL != "" {
			fmt.Fprintf(&b, "Source: %s\n", artifact.SourceURL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// evidenceSummary is the short fallback rendering used when generation is
// unavailable but the corpus still had matches for the question.
func evidenceSummary(artifacts []domain.Artifact) string {
	if len(artifacts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Meanwhile, the local evidence registry has these matches:\n")
	for _, artifact := range artifacts {
		line := artifact.Title
		if artifact.Classification != "" {
			line = fmt.Sprintf("%s (%s)", line, artifact.Classification)
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}
