package corpus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/ports"
)

// Store is the in-process mirror of the artifact registry plus the lexical
// scorer over it. The registry is the source of truth; the mirror is
// reloaded wholesale at startup and on explicit invalidation, and appended
// to on every accepted ingest.
type Store struct {
	repo         ports.ArtifactRepository
	snapshotPath string

	mu        sync.RWMutex
	artifacts []domain.Artifact

	// snapMu serializes snapshot writes so concurrent appends cannot
	// interleave file replacements.
	snapMu sync.Mutex
}

func NewStore(repo ports.ArtifactRepository, snapshotPath string) *Store {
	return &Store{
		repo:         repo,
		snapshotPath: snapshotPath,
	}
}

// Reload replaces the whole in-memory collection from the registry. There is
// no incremental merge: callers needing fresh data after external mutation
// must reload. On registry failure it falls back to the local snapshot, else
// starts empty; neither fallback is an error.
func (s *Store) Reload(ctx context.Context) error {
	artifacts, err := s.repo.ListAll(ctx)
	if err != nil {
		slog.Warn("corpus_reload_registry_failed", "error", err.Error())
		artifacts, err = readSnapshot(s.snapshotPath)
		if err != nil {
			slog.Warn("corpus_reload_snapshot_failed", "path", s.snapshotPath, "error", err.Error())
			artifacts = nil
		} else {
			slog.Info("corpus_loaded_from_snapshot", "path", s.snapshotPath, "count", len(artifacts))
		}
	} else {
		slog.Info("corpus_loaded_from_registry", "count", len(artifacts))
	}

	s.mu.Lock()
	s.artifacts = artifacts
	s.mu.Unlock()

	s.writeSnapshotLocked(artifacts)
	return nil
}

// Append adds one artifact after its persistence was attempted. The snapshot
// is rewritten outside the corpus lock so readers never wait on disk I/O.
func (s *Store) Append(artifact domain.Artifact) {
	s.mu.Lock()
	s.artifacts = append(s.artifacts, artifact)
	snapshot := make([]domain.Artifact, len(s.artifacts))
	copy(snapshot, s.artifacts)
	s.mu.Unlock()

	s.writeSnapshotLocked(snapshot)
}

// All returns a copy of the corpus in insertion order.
func (s *Store) All() []domain.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}

func (s *Store) writeSnapshotLocked(artifacts []domain.Artifact) {
	if s.snapshotPath == "" {
		return
	}
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if err := writeSnapshot(s.snapshotPath, artifacts); err != nil {
		slog.Error("corpus_snapshot_write_failed", "path", s.snapshotPath, "error", err.Error())
	}
}
