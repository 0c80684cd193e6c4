package ports

import (
	"context"

	"github.com/aihorizon/horizon/internal/core/domain"
)

// ArtifactRepository is the durable artifact registry. It is the source of
// truth the corpus mirror reloads from.
type ArtifactRepository interface {
	ListAll(ctx context.Context) ([]domain.Artifact, error)
	Insert(ctx context.Context, artifact *domain.Artifact) error
	FindByID(ctx context.Context, id string) (*domain.Artifact, error)
	FindByURL(ctx context.Context, url string) (*domain.Artifact, error)
	FindByURLFragment(ctx context.Context, fragment string) (*domain.Artifact, error)
	DeleteByID(ctx context.Context, id string) error
	AggregateStats(ctx context.Context) (domain.RegistryStats, error)
}

// Generator is the outbound generative-completion service.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (string, error)
}

// KnowledgeStore mirrors accepted artifacts into the generative service's
// named retrieval store.
type KnowledgeStore interface {
	UploadArtifact(ctx context.Context, artifact *domain.Artifact) error
}

// MessageQueue publishes/consumes post-ingest sync events.
type MessageQueue interface {
	PublishArtifactStored(ctx context.Context, artifactID string) error
	SubscribeArtifactStored(ctx context.Context, handler func(context.Context, string) error) error
}

// ContentExtractor converts submitted sources to plain text.
type ContentExtractor interface {
	ExtractURL(ctx context.Context, url string) (string, domain.SourceType, error)
	ExtractFile(ctx context.Context, filename string, data []byte) (string, domain.SourceType, error)
}

// EvidenceCorpus is the in-process mirror plus the lexical scorer over it.
type EvidenceCorpus interface {
	Reload(ctx context.Context) error
	Append(artifact domain.Artifact)
	All() []domain.Artifact
	Len() int
	Search(query string, limit int) []domain.Artifact
	SearchTasks(query string, filter domain.SearchFilter, limit int) []domain.TaskSummary
}

// DuplicateDetector answers whether a submission has been registered before.
type DuplicateDetector interface {
	FindByURL(ctx context.Context, url string) (*domain.Artifact, error)
	IsDuplicate(ctx context.Context, content, url string) (bool, error)
	Register(content, url string) string
}

// SessionStore holds ephemeral conversation state.
type SessionStore interface {
	History(sessionID string) []domain.Turn
	Append(sessionID, role, content string)
}
