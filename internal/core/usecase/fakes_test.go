package usecase

import (
	"context"
	"errors"

	"github.com/aihorizon/horizon/internal/core/domain"
)

type repoFake struct {
	artifacts  []domain.Artifact
	byID       map[string]*domain.Artifact
	insertErr  error
	statsErr   error
	deleteErr  error
	inserted   []domain.Artifact
	deletedIDs []string
	stats      domain.RegistryStats
}

func (f *repoFake) ListAll(context.Context) ([]domain.Artifact, error) { return f.artifacts, nil }

func (f *repoFake) Insert(_ context.Context, artifact *domain.Artifact) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *artifact)
	return nil
}

func (f *repoFake) FindByID(_ context.Context, id string) (*domain.Artifact, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, domain.WrapError(domain.ErrArtifactNotFound, "find by id", errors.New(id))
}

func (f *repoFake) FindByURL(context.Context, string) (*domain.Artifact, error) {
	return nil, domain.ErrArtifactNotFound
}

func (f *repoFake) FindByURLFragment(context.Context, string) (*domain.Artifact, error) {
	return nil, domain.ErrArtifactNotFound
}

func (f *repoFake) DeleteByID(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *repoFake) AggregateStats(context.Context) (domain.RegistryStats, error) {
	if f.statsErr != nil {
		return domain.RegistryStats{}, f.statsErr
	}
	return f.stats, nil
}

type detectorFake struct {
	existing   *domain.Artifact
	duplicate  bool
	findErr    error
	dupErr     error
	registered []string
}

func (f *detectorFake) FindByURL(context.Context, string) (*domain.Artifact, error) {
	return f.existing, f.findErr
}

func (f *detectorFake) IsDuplicate(context.Context, string, string) (bool, error) {
	return f.duplicate, f.dupErr
}

func (f *detectorFake) Register(content, _ string) string {
	f.registered = append(f.registered, content)
	return "fp"
}

type contentExtractorFake struct {
	text       string
	sourceType domain.SourceType
	err        error
}

func (f *contentExtractorFake) ExtractURL(context.Context, string) (string, domain.SourceType, error) {
	if f.err != nil {
		return "", f.sourceType, f.err
	}
	return f.text, f.sourceType, nil
}

func (f *contentExtractorFake) ExtractFile(context.Context, string, []byte) (string, domain.SourceType, error) {
	if f.err != nil {
		return "", f.sourceType, f.err
	}
	return f.text, f.sourceType, nil
}

type generatorFake struct {
	output   string
	err      error
	requests []domain.GenerateRequest
}

func (f *generatorFake) Generate(_ context.Context, req domain.GenerateRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

type corpusFake struct {
	artifacts []domain.Artifact
	appended  []domain.Artifact
	results   []domain.Artifact
	tasks     []domain.TaskSummary
	reloads   int
}

func (f *corpusFake) Reload(context.Context) error { f.reloads++; return nil }
func (f *corpusFake) Append(artifact domain.Artifact) {
	f.appended = append(f.appended, artifact)
	f.artifacts = append(f.artifacts, artifact)
}
func (f *corpusFake) All() []domain.Artifact { return f.artifacts }
func (f *corpusFake) Len() int               { return len(f.artifacts) }
func (f *corpusFake) Search(string, int) []domain.Artifact {
	return f.results
}
func (f *corpusFake) SearchTasks(string, domain.SearchFilter, int) []domain.TaskSummary {
	return f.tasks
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishArtifactStored(_ context.Context, artifactID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, artifactID)
	return nil
}

func (f *queueFake) SubscribeArtifactStored(context.Context, func(context.Context, string) error) error {
	return nil
}

type sessionsFake struct {
	history  []domain.Turn
	appended []domain.Turn
}

func (f *sessionsFake) History(string) []domain.Turn { return f.history }
func (f *sessionsFake) Append(_, role, content string) {
	f.appended = append(f.appended, domain.Turn{Role: role, Content: content})
}

type knowledgeStoreFake struct {
	uploaded []string
	err      error
}

func (f *knowledgeStoreFake) UploadArtifact(_ context.Context, artifact *domain.Artifact) error {
	if f.err != nil {
		return f.err
	}
	f.uploaded = append(f.uploaded, artifact.ID)
	return nil
}
