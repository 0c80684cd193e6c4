package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/aihorizon/horizon/internal/core/domain"
)

type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS artifact_registry (
	artifact_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	source_url TEXT,
	source_type TEXT NOT NULL,
	classification TEXT,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	rationale TEXT,
	dcwf_tasks JSONB NOT NULL DEFAULT '[]'::jsonb,
	work_roles JSONB NOT NULL DEFAULT '[]'::jsonb,
	key_findings JSONB NOT NULL DEFAULT '[]'::jsonb,
	ai_tools JSONB NOT NULL DEFAULT '[]'::jsonb,
	resource_type TEXT,
	difficulty TEXT,
	is_free BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifact_registry_created_at ON artifact_registry(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_artifact_registry_classification ON artifact_registry(classification);
CREATE INDEX IF NOT EXISTS idx_artifact_registry_source_url ON artifact_registry(lower(source_url));
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const artifactColumns = `artifact_id, title, content, source_url, source_type, classification, confidence, rationale, dcwf_tasks, work_roles, key_findings, ai_tools, resource_type, difficulty, is_free, created_at`

func (r *ArtifactRepository) ListAll(ctx context.Context) ([]domain.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+artifactColumns+`
FROM artifact_registry
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, *artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

func (r *ArtifactRepository) Insert(ctx context.Context, artifact *domain.Artifact) error {
	tasksJSON, err := json.Marshal(artifact.DCWFTasks)
	if err != nil {
		return fmt.Errorf("marshal dcwf tasks: %w", err)
	}
	rolesJSON, err := json.Marshal(artifact.WorkRoles)
	if err != nil {
		return fmt.Errorf("marshal work roles: %w", err)
	}
	findingsJSON, err := json.Marshal(artifact.KeyFindings)
	if err != nil {
		return fmt.Errorf("marshal key findings: %w", err)
	}
	toolsJSON, err := json.Marshal(artifact.AITools)
	if err != nil {
		return fmt.Errorf("marshal ai tools: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO artifact_registry (
	artifact_id, title, content, source_url, source_type, classification, confidence, rationale, dcwf_tasks, work_roles, key_findings, ai_tools, resource_type, difficulty, is_free, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		artifact.ID, artifact.Title, artifact.Content, artifact.SourceURL, string(artifact.SourceType),
		string(artifact.Classification), artifact.Confidence, artifact.Rationale,
		tasksJSON, rolesJSON, findingsJSON, toolsJSON,
		string(artifact.ResourceType), string(artifact.Difficulty), artifact.IsFree, artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

func (r *ArtifactRepository) FindByID(ctx context.Context, id string) (*domain.Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+artifactColumns+`
FROM artifact_registry
WHERE artifact_id = $1
`, id)
	return scanArtifactRow(row, id)
}

func (r *ArtifactRepository) FindByURL(ctx context.Context, url string) (*domain.Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+artifactColumns+`
FROM artifact_registry
WHERE source_url = $1
LIMIT 1
`, url)
	return scanArtifactRow(row, url)
}

// FindByURLFragment matches stored URLs containing the normalized fragment.
// Callers must re-check the hit: substring containment alone is not identity.
func (r *ArtifactRepository) FindByURLFragment(ctx context.Context, fragment string) (*domain.Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+artifactColumns+`
FROM artifact_registry
WHERE source_url ILIKE '%' || $1 || '%'
LIMIT 1
`, fragment)
	return scanArtifactRow(row, fragment)
}

func (r *ArtifactRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM artifact_registry WHERE artifact_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete artifact rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrArtifactNotFound, "delete artifact", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *ArtifactRepository) AggregateStats(ctx context.Context) (domain.RegistryStats, error) {
	stats := domain.RegistryStats{
		Classifications: make(map[string]int),
		SourceTypes:     make(map[string]int),
	}

	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifact_registry`)
	if err := row.Scan(&stats.Total); err != nil {
		return domain.RegistryStats{}, fmt.Errorf("count artifacts: %w", err)
	}

	if err := r.countGrouped(ctx, `SELECT classification, COUNT(*) FROM artifact_registry WHERE classification IS NOT NULL AND classification <> '' GROUP BY classification`, stats.Classifications); err != nil {
		return domain.RegistryStats{}, err
	}
	if err := r.countGrouped(ctx, `SELECT source_type, COUNT(*) FROM artifact_registry GROUP BY source_type`, stats.SourceTypes); err != nil {
		return domain.RegistryStats{}, err
	}
	return stats, nil
}

func (r *ArtifactRepository) countGrouped(ctx context.Context, query string, out map[string]int) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("grouped count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan grouped count: %w", err)
		}
		out[key] = count
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate grouped count: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*domain.Artifact, error) {
	var artifact domain.Artifact
	var sourceURL, classification, rationale, resourceType, difficulty sql.NullString
	var tasksRaw, rolesRaw, findingsRaw, toolsRaw []byte
	var sourceType string

	err := row.Scan(
		&artifact.ID, &artifact.Title, &artifact.Content, &sourceURL, &sourceType,
		&classification, &artifact.Confidence, &rationale,
		&tasksRaw, &rolesRaw, &findingsRaw, &toolsRaw,
		&resourceType, &difficulty, &artifact.IsFree, &artifact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	artifact.SourceURL = sourceURL.String
	artifact.SourceType = domain.SourceType(sourceType)
	artifact.Classification = domain.ClassificationType(classification.String)
	artifact.Rationale = rationale.String
	artifact.ResourceType = domain.ResourceType(resourceType.String)
	artifact.Difficulty = domain.DifficultyLevel(difficulty.String)

	if err := json.Unmarshal(tasksRaw, &artifact.DCWFTasks); err != nil {
		return nil, fmt.Errorf("unmarshal dcwf tasks: %w", err)
	}
	if err := json.Unmarshal(rolesRaw, &artifact.WorkRoles); err != nil {
		return nil, fmt.Errorf("unmarshal work roles: %w", err)
	}
	if err := json.Unmarshal(findingsRaw, &artifact.KeyFindings); err != nil {
		return nil, fmt.Errorf("unmarshal key findings: %w", err)
	}
	if err := json.Unmarshal(toolsRaw, &artifact.AITools); err != nil {
		return nil, fmt.Errorf("unmarshal ai tools: %w", err)
	}
	return &artifact, nil
}

func scanArtifactRow(row *sql.Row, lookup string) (*domain.Artifact, error) {
	artifact, err := scanArtifact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrArtifactNotFound, "find artifact", fmt.Errorf("lookup %s", lookup))
		}
		return nil, fmt.Errorf("scan artifact: %w", err)
	}
	return artifact, nil
}
