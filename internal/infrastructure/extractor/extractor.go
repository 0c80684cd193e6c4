// Package extractor converts submitted sources (URLs and uploaded files) to
// the plain text the classifier consumes.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aihorizon/horizon/internal/core/domain"
)

// Router dispatches extraction by source shape. YouTube links and
// spreadsheets are rejected up front: neither yields text worth classifying.
type Router struct {
	web *WebExtractor
}

func NewRouter(web *WebExtractor) *Router {
	return &Router{web: web}
}

func (r *Router) ExtractURL(ctx context.Context, url string) (string, domain.SourceType, error) {
	if IsYouTubeURL(url) {
		return "", domain.SourceYouTube, domain.WrapError(domain.ErrInvalidInput, "extract url",
			fmt.Errorf("youtube sources are not supported, submit a transcript instead"))
	}
	text, err := r.web.Extract(ctx, url)
	if err != nil {
		return "", domain.SourceWeb, err
	}
	return text, domain.SourceWeb, nil
}

func (r *Router) ExtractFile(ctx context.Context, filename string, data []byte) (string, domain.SourceType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", domain.SourcePDF, err
		}
		return text, domain.SourcePDF, nil
	case ".xlsx", ".xls":
		return "", domain.SourceDocument, domain.WrapError(domain.ErrInvalidInput, "extract file",
			fmt.Errorf("spreadsheet %s is not supported", filename))
	default:
		text, err := extractPlaintext(filename, data)
		if err != nil {
			return "", domain.SourceDocument, err
		}
		return text, domain.SourceDocument, nil
	}
}

func IsYouTubeURL(url string) bool {
	lowered := strings.ToLower(url)
	return strings.Contains(lowered, "youtube.com/") || strings.Contains(lowered, "youtu.be/")
}
