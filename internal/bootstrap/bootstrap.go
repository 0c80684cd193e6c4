package bootstrap

import (
	"context"
	"fmt"

	"github.com/aihorizon/horizon/internal/config"
	"github.com/aihorizon/horizon/internal/core/corpus"
	"github.com/aihorizon/horizon/internal/core/dedup"
	"github.com/aihorizon/horizon/internal/core/ports"
	"github.com/aihorizon/horizon/internal/core/session"
	"github.com/aihorizon/horizon/internal/core/usecase"
	"github.com/aihorizon/horizon/internal/infrastructure/extractor"
	"github.com/aihorizon/horizon/internal/infrastructure/llm/gemini"
	"github.com/aihorizon/horizon/internal/infrastructure/queue/nats"
	"github.com/aihorizon/horizon/internal/infrastructure/repository/postgres"
	"github.com/aihorizon/horizon/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue  ports.MessageQueue
	Repo   ports.ArtifactRepository
	Corpus ports.EvidenceCorpus

	SubmitUC *usecase.SubmitArtifactUseCase
	ChatUC   *usecase.ChatUseCase
	SearchUC *usecase.SearchUseCase
	StatsUC  *usecase.StatsUseCase
	AdminUC  *usecase.AdminUseCase
	SyncUC   *usecase.SyncArtifactUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if len(cfg.GeminiAPIKeys) == 0 {
		return nil, fmt.Errorf("no gemini api keys configured")
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewArtifactRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	mirror := corpus.NewStore(repo, cfg.SnapshotPath)
	if err := mirror.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load corpus mirror: %w", err)
	}

	detector := dedup.NewDetector(repo, cfg.DedupFailOpen)
	sessions := session.NewStore(cfg.SessionMaxTurns)

	exec := resilience.NewExecutor(resilience.DefaultConfig())
	geminiClient := gemini.New(gemini.NewKeyring(cfg.GeminiAPIKeys), exec, gemini.Options{
		BaseURL:           cfg.GeminiBaseURL,
		Model:             cfg.GeminiModel,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})

	extractorRouter := extractor.NewRouter(extractor.NewWebExtractor(0))

	app := &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,
		Corpus: mirror,

		SubmitUC: usecase.NewSubmitArtifactUseCase(detector, extractorRouter, geminiClient, repo, mirror, queue),
		ChatUC:   usecase.NewChatUseCase(geminiClient, mirror, sessions, cfg.FileSearchStores),
		SearchUC: usecase.NewSearchUseCase(mirror, geminiClient, cfg.FileSearchStores),
		StatsUC:  usecase.NewStatsUseCase(repo, mirror),
		AdminUC:  usecase.NewAdminUseCase(repo, mirror),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}

	if len(cfg.FileSearchStores) > 0 {
		store := gemini.NewFileStore(geminiClient, cfg.FileSearchStores[0])
		app.SyncUC = usecase.NewSyncArtifactUseCase(repo, store)
	}

	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
