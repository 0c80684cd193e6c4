package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/ports"
)

type SubmitArtifactUseCase struct {
	detector  ports.DuplicateDetector
	extractor ports.ContentExtractor
	generator ports.Generator
	repo      ports.ArtifactRepository
	corpus    ports.EvidenceCorpus
	queue     ports.MessageQueue
}

// NewSubmitArtifactUseCase wires the ingest pipeline. queue may be nil when
// no sync worker is deployed.
func NewSubmitArtifactUseCase(
	detector ports.DuplicateDetector,
	extractor ports.ContentExtractor,
	generator ports.Generator,
	repo ports.ArtifactRepository,
	corpus ports.EvidenceCorpus,
	queue ports.MessageQueue,
) *SubmitArtifactUseCase {
	return &SubmitArtifactUseCase{
		detector:  detector,
		extractor: extractor,
		generator: generator,
		repo:      repo,
		corpus:    corpus,
		queue:     queue,
	}
}

func (uc *SubmitArtifactUseCase) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.SubmitResult, error) {
	url := strings.TrimSpace(req.URL)
	content := strings.TrimSpace(req.Content)
	if url == "" && content == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit artifact",
			fmt.Errorf("either url or content is required"))
	}

	if url != "" {
		existing, err := uc.detector.FindByURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("duplicate url check: %w", err)
		}
		if existing != nil {
			return duplicateResult(existing.ID), nil
		}
	}

	sourceType := req.SourceType
	if content == "" {
		extracted, extractedType, err := uc.extractor.ExtractURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("extract url content: %w", err)
		}
		content = strings.TrimSpace(extracted)
		sourceType = extractedType
	}
	if content == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit artifact",
			fmt.Errorf("no text content could be extracted"))
	}
	if sourceType == "" {
		sourceType = domain.SourceText
	}

	return uc.ingest(ctx, req, content, url, sourceType)
}

// Upload ingests a submitted file through the same relevance and dedup gates
// as URL submissions.
func (uc *SubmitArtifactUseCase) Upload(ctx context.Context, filename, title string, data []byte) (*domain.SubmitResult, error) {
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload artifact",
			fmt.Errorf("empty file %s", filename))
	}

	content, sourceType, err := uc.extractor.ExtractFile(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("extract file content: %w", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload artifact",
			fmt.Errorf("no text content in %s", filename))
	}

	if title == "" {
		title = filename
	}
	return uc.ingest(ctx, domain.SubmitRequest{Title: title}, content, "", sourceType)
}

func (uc *SubmitArtifactUseCase) ingest(
	ctx context.Context,
	req domain.SubmitRequest,
	content, url string,
	sourceType domain.SourceType,
) (*domain.SubmitResult, error) {
	dup, err := uc.detector.IsDuplicate(ctx, content, url)
	if err != nil {
		return nil, fmt.Errorf("duplicate content check: %w", err)
	}
	if dup {
		return duplicateResult(""), nil
	}

	classification, err := uc.classify(ctx, req, content)
	if err != nil {
		return nil, err
	}

	if !classification.Accepted() {
		return &domain.SubmitResult{
			Success:         true,
			IsRelevant:      false,
			RelevanceScore:  classification.RelevanceScore,
			RelevanceReason: classification.RelevanceReason,
			Message:         "Content was analyzed but is not relevant evidence for AI impact on cyber work.",
			Classification:  &classification,
		}, nil
	}

	artifact := uc.buildArtifact(req, content, url, sourceType, classification)

	// Local-first persistence: a registry outage must not lose the
	// submission, so the corpus mirror and snapshot are updated even when
	// the insert fails.
	if err := uc.repo.Insert(ctx, &artifact); err != nil {
		slog.Warn("artifact_insert_failed", "artifact_id", artifact.ID, "error", err.Error())
	}
	uc.detector.Register(content, url)
	uc.corpus.Append(artifact)

	if uc.queue != nil {
		if err := uc.queue.PublishArtifactStored(ctx, artifact.ID); err != nil {
			slog.Warn("artifact_sync_publish_failed", "artifact_id", artifact.ID, "error", err.Error())
		}
	}

	slog.Info("artifact_stored",
		"artifact_id", artifact.ID,
		"classification", string(artifact.Classification),
		"tasks", len(artifact.DCWFTasks),
		"source_type", string(artifact.SourceType),
	)

	return &domain.SubmitResult{
		Success:         true,
		ArtifactID:      artifact.ID,
		IsRelevant:      true,
		RelevanceScore:  classification.RelevanceScore,
		RelevanceReason: classification.RelevanceReason,
		Stored:          true,
		Message:         "Evidence stored in the registry.",
		Classification:  &classification,
	}, nil
}

func (uc *SubmitArtifactUseCase) classify(ctx context.Context, req domain.SubmitRequest, content string) (domain.ClassificationResult, error) {
	raw, err := uc.generator.Generate(ctx, domain.GenerateRequest{
		Prompt:            buildClassificationPrompt(content, req.Title, req.WorkRole),
		SystemInstruction: classificationInstruction,
		JSONMode:          true,
	})
	if err != nil {
		if domain.IsKind(err, domain.ErrRateLimited) {
			return domain.ClassificationResult{}, err
		}
		slog.Warn("classification_failed", "error", err.Error())
		return domain.DefaultClassification("classification call failed"), nil
	}

	classification, err := domain.ParseClassification(raw)
	if err != nil {
		slog.Warn("classification_parse_failed", "error", err.Error())
	}
	return classification, nil
}

func (uc *SubmitArtifactUseCase) buildArtifact(
	req domain.SubmitRequest,
	content, url string,
	sourceType domain.SourceType,
	classification domain.ClassificationResult,
) domain.Artifact {
	// Storage keeps a bounded prefix; the full text was already fed to the
	// classifier.
	stored := content
	if len(stored) > storedContentLimit {
		stored = stored[:storedContentLimit]
	}
	artifact := domain.Artifact{
		ID:             uuid.NewString(),
		Title:          deriveTitle(req.Title, content, url),
		Content:        stored,
		SourceURL:      url,
		SourceType:     sourceType,
		Classification: classification.Classification,
		Confidence:     classification.Confidence,
		Rationale:      classification.Rationale,
		DCWFTasks:      classification.DCWFTasks,
		WorkRoles:      classification.WorkRoles,
		KeyFindings:    classification.KeyFindings,
		AITools:        classification.AITools,
		ResourceType:   req.ResourceType,
		Difficulty:     req.Difficulty,
		IsFree:         true,
		CreatedAt:      time.Now().UTC(),
	}
	if artifact.Classification == "" {
		artifact.Classification = domain.ClassificationAugment
	}
	if artifact.ResourceType == "" {
		artifact.ResourceType = domain.ResourceArticle
	}
	if artifact.Difficulty == "" {
		artifact.Difficulty = domain.DifficultyIntermediate
	}
	if req.IsFree != nil {
		artifact.IsFree = *req.IsFree
	}
	if req.WorkRole != "" && len(artifact.WorkRoles) == 0 {
		artifact.WorkRoles = []string{req.WorkRole}
	}
	artifact.EnsureWorkRoles()
	return artifact
}

func duplicateResult(artifactID string) *domain.SubmitResult {
	return &domain.SubmitResult{
		Success:     true,
		ArtifactID:  artifactID,
		IsDuplicate: true,
		Message:     "This source is already in the registry.",
	}
}

const (
	titleLimit         = 120
	storedContentLimit = 5000
)

func deriveTitle(title, content, url string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			if len(line) > titleLimit {
				return line[:titleLimit]
			}
			return line
		}
	}
	if url != "" {
		return url
	}
	return "Untitled evidence"
}
