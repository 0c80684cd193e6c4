package corpus

import (
	"sort"
	"strings"

	"github.com/aihorizon/horizon/internal/core/domain"
)

// SearchTasks runs the filtered task aggregation: artifact-level filters
// first, then per-task extraction and word-level query gating, then grouping
// by task identifier with merged evidence counts and unioned work roles.
// Rows are sorted by evidence count descending and capped at limit. An empty
// query with active filters still returns filtered, grouped rows.
func (s *Store) SearchTasks(query string, filter domain.SearchFilter, limit int) []domain.TaskSummary {
	queryWords := strings.Fields(strings.ToLower(strings.TrimSpace(query)))

	taskMap := make(map[string]*domain.TaskSummary)
	var order []string

	for _, artifact := range s.All() {
		if !artifactPassesFilter(artifact, filter) {
			continue
		}

		for _, task := range artifact.DCWFTasks {
			if task.TaskID == "" {
				continue
			}
			if filter.TaskID != "" && !strings.Contains(strings.ToUpper(task.TaskID), strings.ToUpper(filter.TaskID)) {
				continue
			}
			if len(queryWords) > 0 && !taskMatchesQuery(artifact, task, queryWords) {
				continue
			}

			summary, ok := taskMap[task.TaskID]
			if !ok {
				description := task.ImpactDescription
				if description == "" {
					description = truncate(artifact.Rationale, 200)
				}
				taskName := task.TaskName
				if taskName == "" {
					taskName = "Task " + task.TaskID
				}
				summary = &domain.TaskSummary{
					TaskID:         task.TaskID,
					TaskName:       taskName,
					Description:    description,
					Classification: string(artifact.Classification),
					Confidence:     artifact.Confidence,
					WorkRoles:      []string{},
				}
				taskMap[task.TaskID] = summary
				order = append(order, task.TaskID)
			}
			summary.EvidenceCount++
			summary.WorkRoles = unionRoles(summary.WorkRoles, artifact.WorkRoles)
		}
	}

	results := make([]domain.TaskSummary, 0, len(order))
	for _, id := range order {
		results = append(results, *taskMap[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EvidenceCount > results[j].EvidenceCount
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func artifactPassesFilter(artifact domain.Artifact, filter domain.SearchFilter) bool {
	if filter.Classification != "" &&
		!strings.EqualFold(string(artifact.Classification), filter.Classification) {
		return false
	}

	if filter.WorkRole != "" {
		roleLower := strings.ToLower(filter.WorkRole)
		matched := false
		for _, role := range artifact.WorkRoles {
			if strings.Contains(strings.ToLower(role), roleLower) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if filter.AITool != "" {
		toolLower := strings.ToLower(filter.AITool)
		matched := false
		for _, tool := range artifact.AITools {
			if strings.Contains(strings.ToLower(tool), toolLower) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// taskMatchesQuery gates task inclusion on any query word appearing in the
// concatenated searchable text of the task and its artifact.
func taskMatchesQuery(artifact domain.Artifact, task domain.TaskMapping, queryWords []string) bool {
	searchable := strings.ToLower(strings.Join([]string{
		task.TaskID,
		task.TaskName,
		task.ImpactDescription,
		artifact.Title,
		artifact.Rationale,
		contentPrefix(artifact.Content),
		strings.Join(artifact.KeyFindings, " "),
	}, " "))

	for _, word := range queryWords {
		if strings.Contains(searchable, word) {
			return true
		}
	}
	return false
}

func unionRoles(existing, extra []string) []string {
	for _, role := range extra {
		found := false
		for _, have := range existing {
			if have == role {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, role)
		}
	}
	return existing
}

func truncate(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}
