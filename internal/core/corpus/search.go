package corpus

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aihorizon/horizon/internal/core/domain"
)

// contentScanLen bounds how much artifact content participates in matching.
const contentScanLen = 2000

// Additive relevance weights. Task-identifier hits dominate, then title,
// then weaker structured-field signals.
const (
	weightTaskID         = 10
	weightTitle          = 5
	weightContent        = 3
	weightWorkRole       = 3
	weightRationale      = 2
	weightFinding        = 2
	weightClassification = 2
	weightKeyword        = 1
)

// dcwfIDPattern matches DCWF task identifiers like AN-T1019 or OM-ADM.
// Multiple identifiers in one query are treated as alternatives.
var dcwfIDPattern = regexp.MustCompile(`\b([A-Za-z]{2}-[A-Za-z]?\d{3,5}|[A-Za-z]{2}-[A-Za-z]{2,3})\b`)

// bareTaskIDPattern matches prefix-less task tokens like T0123.
var bareTaskIDPattern = regexp.MustCompile(`^[A-Za-z]\d{3,5}$`)

// searchVocabulary is the fixed keyword list for weak co-occurrence scoring.
var searchVocabulary = []string{
	"task", "evidence", "ai", "automation", "replace", "augment", "threat", "security",
}

// ExtractTaskIDs pulls DCWF task identifiers out of free text, upper-cased.
func ExtractTaskIDs(text string) []string {
	matches := dcwfIDPattern.FindAllString(strings.ToUpper(text), -1)
	return matches
}

// MatchesTaskID reports whether the text contains a DCWF identifier at all.
func MatchesTaskID(text string) bool {
	return dcwfIDPattern.MatchString(strings.ToUpper(text))
}

// Search runs the free-text artifact search: each artifact gets an additive
// score from independent signals, zero-score artifacts are excluded, and
// ties keep insertion order.
func (s *Store) Search(query string, limit int) []domain.Artifact {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}
	taskIDs := ExtractTaskIDs(query)
	if len(taskIDs) == 0 {
		// Bare identifiers like T0123 carry no work-role prefix but are
		// still task lookups.
		if words := strings.Fields(strings.ToUpper(query)); len(words) == 1 && bareTaskIDPattern.MatchString(words[0]) {
			taskIDs = words
		}
	}

	type scored struct {
		score    int
		artifact domain.Artifact
	}

	var results []scored
	for _, artifact := range s.All() {
		score := scoreArtifact(artifact, queryLower, taskIDs)
		if score > 0 {
			results = append(results, scored{score: score, artifact: artifact})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]domain.Artifact, 0, len(results))
	for _, r := range results {
		out = append(out, r.artifact)
	}
	return out
}

func scoreArtifact(artifact domain.Artifact, queryLower string, taskIDs []string) int {
	score := 0

	for _, task := range artifact.DCWFTasks {
		taskIDUpper := strings.ToUpper(task.TaskID)
		for _, id := range taskIDs {
			if strings.Contains(taskIDUpper, id) {
				score += weightTaskID
				break
			}
		}
	}

	if strings.Contains(strings.ToLower(artifact.Title), queryLower) {
		score += weightTitle
	}
	if strings.Contains(strings.ToLower(contentPrefix(artifact.Content)), queryLower) {
		score += weightContent
	}
	if strings.Contains(strings.ToLower(artifact.Rationale), queryLower) {
		score += weightRationale
	}
	for _, role := range artifact.WorkRoles {
		if strings.Contains(strings.ToLower(role), queryLower) {
			score += weightWorkRole
		}
	}
	for _, finding := range artifact.KeyFindings {
		if strings.Contains(strings.ToLower(finding), queryLower) {
			score += weightFinding
		}
	}
	if strings.Contains(strings.ToLower(string(artifact.Classification)), queryLower) {
		score += weightClassification
	}

	contentLower := strings.ToLower(contentPrefix(artifact.Content))
	for _, keyword := range searchVocabulary {
		if strings.Contains(queryLower, keyword) && strings.Contains(contentLower, keyword) {
			score += weightKeyword
		}
	}

	return score
}

func contentPrefix(content string) string {
	if len(content) > contentScanLen {
		return content[:contentScanLen]
	}
	return content
}
