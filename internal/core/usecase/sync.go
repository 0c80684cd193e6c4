package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aihorizon/horizon/internal/core/ports"
)

// SyncArtifactUseCase mirrors stored artifacts into the remote knowledge
// store. It runs in the worker process off the queue, so submission latency
// never includes the upload.
type SyncArtifactUseCase struct {
	repo  ports.ArtifactRepository
	store ports.KnowledgeStore
}

func NewSyncArtifactUseCase(repo ports.ArtifactRepository, store ports.KnowledgeStore) *SyncArtifactUseCase {
	return &SyncArtifactUseCase{repo: repo, store: store}
}

func (uc *SyncArtifactUseCase) SyncByID(ctx context.Context, artifactID string) error {
	artifact, err := uc.repo.FindByID(ctx, artifactID)
	if err != nil {
		return fmt.Errorf("fetch artifact by id: %w", err)
	}

	if err := uc.store.UploadArtifact(ctx, artifact); err != nil {
		return fmt.Errorf("upload artifact to knowledge store: %w", err)
	}

	slog.Info("artifact_synced", "artifact_id", artifactID)
	return nil
}
