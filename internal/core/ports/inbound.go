package ports

import (
	"context"

	"github.com/aihorizon/horizon/internal/core/domain"
)

// ArtifactSubmitter is the inbound contract for evidence submission.
type ArtifactSubmitter interface {
	Submit(ctx context.Context, req domain.SubmitRequest) (*domain.SubmitResult, error)
	Upload(ctx context.Context, filename, title string, data []byte) (*domain.SubmitResult, error)
}

// ChatService is the inbound contract for the retrieval-augmented chat turn.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (*domain.ChatResult, error)
}

// EvidenceSearcher is the inbound contract for evidence search: the local
// corpus first, the generative knowledge stores when the corpus has nothing.
type EvidenceSearcher interface {
	SearchTasks(ctx context.Context, query string, filter domain.SearchFilter, limit int) (*domain.TaskSearchResult, error)
	Resources(ctx context.Context, req domain.ResourceQuery) (*domain.ResourcePage, error)
}

// ArtifactSyncer is the inbound contract for the asynchronous
// knowledge-store sync worker.
type ArtifactSyncer interface {
	SyncByID(ctx context.Context, artifactID string) error
}
