package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/ports"
)

const (
	defaultTaskLimit     = 20
	defaultResourceLimit = 20
	maxResourceLimit     = 100

	searchSourceLocal      = "local"
	searchSourceGenerative = "generative"

	searchRateLimitMessage = "Rate limit reached. Please wait a minute and try again."
)

type SearchUseCase struct {
	corpus    ports.EvidenceCorpus
	generator ports.Generator
	stores    []string
}

func NewSearchUseCase(evidenceCorpus ports.EvidenceCorpus, generator ports.Generator, knowledgeStores []string) *SearchUseCase {
	return &SearchUseCase{corpus: evidenceCorpus, generator: generator, stores: knowledgeStores}
}

// SearchTasks answers from the local corpus when it can; an empty local hit
// falls through to a generative query against the knowledge stores, with
// evidence counts backfilled from the corpus afterwards.
func (uc *SearchUseCase) SearchTasks(ctx context.Context, query string, filter domain.SearchFilter, limit int) (*domain.TaskSearchResult, error) {
	if limit <= 0 {
		limit = defaultTaskLimit
	}
	if tasks := uc.corpus.SearchTasks(query, filter, limit); len(tasks) > 0 {
		return &domain.TaskSearchResult{Tasks: tasks, Source: searchSourceLocal}, nil
	}

	if uc.generator == nil {
		return &domain.TaskSearchResult{
			Tasks:   []domain.TaskSummary{},
			Message: "No results found in local store and generative search is not configured",
		}, nil
	}

	// Knowledge-store retrieval cannot be combined with a JSON response mime
	// type, so the model is asked for a raw array and it is carved out of
	// free text below.
	output, err := uc.generator.Generate(ctx, domain.GenerateRequest{
		Prompt:          buildTaskSearchPrompt(query, filter, limit),
		KnowledgeStores: uc.stores,
	})
	if err != nil {
		if domain.IsKind(err, domain.ErrRateLimited) {
			slog.Warn("search_rate_limited", "query", query)
			return &domain.TaskSearchResult{
				Tasks:   []domain.TaskSummary{},
				Message: searchRateLimitMessage,
			}, nil
		}
		return nil, err
	}

	tasks, ok := parseTaskArray(output)
	if !ok {
		return &domain.TaskSearchResult{
			Tasks:   []domain.TaskSummary{},
			Source:  searchSourceGenerative,
			Message: "No results found",
		}, nil
	}
	for i := range tasks {
		if tasks[i].TaskID != "" {
			tasks[i].EvidenceCount = uc.countEvidenceForTask(tasks[i].TaskID)
		}
	}
	return &domain.TaskSearchResult{Tasks: tasks, Source: searchSourceGenerative}, nil
}

// parseTaskArray digs the first JSON array out of a model response that may
// wrap it in prose or markdown fences.
func parseTaskArray(raw string) ([]domain.TaskSummary, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	var tasks []domain.TaskSummary
	if err := json.Unmarshal([]byte(raw[start:end+1]), &tasks); err != nil {
		slog.Warn("search_parse_failed", "error", err.Error())
		return nil, false
	}
	return tasks, true
}

// countEvidenceForTask counts corpus artifacts mentioning the task, each
// artifact at most once however many of its mappings match.
func (uc *SearchUseCase) countEvidenceForTask(taskID string) int {
	wanted := strings.ToLower(taskID)
	count := 0
	for _, artifact := range uc.corpus.All() {
		for _, task := range artifact.DCWFTasks {
			if strings.Contains(strings.ToLower(task.TaskID), wanted) {
				count++
				break
			}
		}
	}
	return count
}

// Resources pages through the corpus newest-first with field filters applied
// before pagination.
func (uc *SearchUseCase) Resources(_ context.Context, req domain.ResourceQuery) (*domain.ResourcePage, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultResourceLimit
	}
	if limit > maxResourceLimit {
		limit = maxResourceLimit
	}

	var filtered []domain.Artifact
	for _, artifact := range uc.corpus.All() {
		if resourceMatches(artifact, req) {
			filtered = append(filtered, artifact)
		}
	}
	// Corpus order mixes reload order with appended ingests; the listing is
	// newest-first regardless.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	resources := filtered[start:end]
	if resources == nil {
		resources = []domain.Artifact{}
	}
	return &domain.ResourcePage{
		Resources:  resources,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}, nil
}

func resourceMatches(artifact domain.Artifact, req domain.ResourceQuery) bool {
	if req.ResourceType != "" && !strings.EqualFold(string(artifact.ResourceType), req.ResourceType) {
		return false
	}
	if req.Difficulty != "" && !strings.EqualFold(string(artifact.Difficulty), req.Difficulty) {
		return false
	}
	if req.Classification != "" && !strings.EqualFold(string(artifact.Classification), req.Classification) {
		return false
	}
	if req.IsFree != nil && artifact.IsFree != *req.IsFree {
		return false
	}
	if req.WorkRole != "" && !containsFold(artifact.WorkRoles, req.WorkRole) {
		return false
	}
	if req.TaskID != "" {
		wanted := strings.ToUpper(req.TaskID)
		found := false
		for _, task := range artifact.DCWFTasks {
			if strings.Contains(strings.ToUpper(task.TaskID), wanted) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if req.Query != "" {
		q := strings.ToLower(req.Query)
		if !strings.Contains(strings.ToLower(artifact.Title), q) &&
			!strings.Contains(strings.ToLower(artifact.Content), q) &&
			!strings.Contains(strings.ToLower(artifact.Rationale), q) {
			return false
		}
	}
	return true
}

func containsFold(values []string, wanted string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), strings.ToLower(wanted)) {
			return true
		}
	}
	return false
}
