package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/ports"
)

type StatsUseCase struct {
	repo   ports.ArtifactRepository
	corpus ports.EvidenceCorpus
}

func NewStatsUseCase(repo ports.ArtifactRepository, evidenceCorpus ports.EvidenceCorpus) *StatsUseCase {
	return &StatsUseCase{repo: repo, corpus: evidenceCorpus}
}

// Stats reports registry aggregates, recomputing from the local mirror when
// the registry is unreachable.
func (uc *StatsUseCase) Stats(ctx context.Context) (domain.RegistryStats, error) {
	stats, err := uc.repo.AggregateStats(ctx)
	if err == nil {
		return stats, nil
	}
	slog.Warn("registry_stats_failed", "error", err.Error())

	stats = domain.RegistryStats{
		Classifications: make(map[string]int),
		SourceTypes:     make(map[string]int),
	}
	for _, artifact := range uc.corpus.All() {
		stats.Total++
		if artifact.Classification != "" {
			stats.Classifications[string(artifact.Classification)]++
		}
		stats.SourceTypes[string(artifact.SourceType)]++
	}
	return stats, nil
}

// WorkRoles lists the distinct work roles present in the corpus, sorted.
func (uc *StatsUseCase) WorkRoles(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, artifact := range uc.corpus.All() {
		for _, role := range artifact.WorkRoles {
			if role != "" {
				seen[role] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return []string{domain.DefaultWorkRole}, nil
	}

	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}
