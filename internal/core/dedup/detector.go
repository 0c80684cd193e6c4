package dedup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/ports"
)

// Detector gates ingestion: it answers "has this already been registered?"
// against the in-process fingerprint set and the remote artifact registry.
//
// The fingerprint set is a pure cache. Losing it on restart degrades dedup
// recall but never correctness: the registry URL lookup stays authoritative.
type Detector struct {
	repo     ports.ArtifactRepository
	failOpen bool

	mu     sync.RWMutex
	hashes map[string]struct{}
}

// NewDetector builds a detector over the given registry. With failOpen set,
// registry lookup errors are logged and treated as "not found" so transient
// store outages do not block ingestion; the trade-off is possible duplicate
// storage during an outage.
func NewDetector(repo ports.ArtifactRepository, failOpen bool) *Detector {
	return &Detector{
		repo:     repo,
		failOpen: failOpen,
		hashes:   make(map[string]struct{}),
	}
}

// FindByURL locates an already-registered artifact for the URL, tolerating
// scheme/`www.`/trailing-slash variance. A substring candidate from the
// registry is accepted only after a normalized-equality or host+path
// re-check, which is the correctness backstop against short-path false
// positives.
func (d *Detector) FindByURL(ctx context.Context, rawURL string) (*domain.Artifact, error) {
	if rawURL == "" {
		return nil, nil
	}

	artifact, err := d.repo.FindByURL(ctx, rawURL)
	if err != nil && !domain.IsKind(err, domain.ErrArtifactNotFound) {
		if handled := d.storeLookupFailed("find_by_url", err); handled != nil {
			return nil, handled
		}
	}
	if artifact != nil {
		return artifact, nil
	}

	normalized := NormalizeURL(rawURL)
	if normalized == "" {
		return nil, nil
	}

	candidate, err := d.repo.FindByURLFragment(ctx, HostPath(normalized))
	if err != nil && !domain.IsKind(err, domain.ErrArtifactNotFound) {
		if handled := d.storeLookupFailed("find_by_url_fragment", err); handled != nil {
			return nil, handled
		}
	}
	if candidate == nil {
		return nil, nil
	}

	stored := NormalizeURL(candidate.SourceURL)
	if stored == normalized || HostPath(stored) == HostPath(normalized) {
		return candidate, nil
	}
	return nil, nil
}

// IsDuplicate checks the URL path first, then the content fingerprint.
func (d *Detector) IsDuplicate(ctx context.Context, content, url string) (bool, error) {
	if url != "" {
		existing, err := d.FindByURL(ctx, url)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return true, nil
		}
	}

	fp := Fingerprint(content, url)
	d.mu.RLock()
	_, seen := d.hashes[fp]
	d.mu.RUnlock()
	return seen, nil
}

// Register records a content fingerprint. Only relevance-accepted
// submissions reach this point, so the set under-approximates "ever
// submitted".
func (d *Detector) Register(content, url string) string {
	fp := Fingerprint(content, url)
	d.mu.Lock()
	d.hashes[fp] = struct{}{}
	d.mu.Unlock()
	return fp
}

func (d *Detector) storeLookupFailed(operation string, err error) error {
	if d.failOpen {
		slog.Warn("dedup_store_lookup_failed",
			"operation", operation,
			"error", truncateError(err),
		)
		return nil
	}
	return domain.WrapError(domain.ErrTemporary, operation, err)
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > 200 {
		return msg[:200]
	}
	return msg
}
