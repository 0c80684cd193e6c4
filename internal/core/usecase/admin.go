package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aihorizon/horizon/internal/core/ports"
)

type AdminUseCase struct {
	repo   ports.ArtifactRepository
	corpus ports.EvidenceCorpus
}

func NewAdminUseCase(repo ports.ArtifactRepository, evidenceCorpus ports.EvidenceCorpus) *AdminUseCase {
	return &AdminUseCase{repo: repo, corpus: evidenceCorpus}
}

// DeleteArtifact removes an artifact from the registry and reloads the local
// mirror so search stops returning it.
func (uc *AdminUseCase) DeleteArtifact(ctx context.Context, artifactID string) error {
	if err := uc.repo.DeleteByID(ctx, artifactID); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	if err := uc.corpus.Reload(ctx); err != nil {
		slog.Warn("corpus_reload_after_delete_failed", "artifact_id", artifactID, "error", err.Error())
	}
	return nil
}
