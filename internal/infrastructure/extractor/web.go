package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/aihorizon/horizon/internal/core/domain"
)

const maxFetchBytes = 4 << 20

type WebExtractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewWebExtractor(timeout time.Duration) *WebExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebExtractor{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "horizon-ingest/1.0",
	}
}

// Extract fetches the page and flattens its visible text. Script, style and
// navigation chrome are skipped.
func (w *WebExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "fetch url", err)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "fetch url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		kind := domain.ErrInvalidInput
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			kind = domain.ErrTemporary
		}
		return "", domain.WrapError(kind, "fetch url", fmt.Errorf("status %s", resp.Status))
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return flattenText(doc), nil
}

var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"nav":      {},
	"header":   {},
	"footer":   {},
}

func flattenText(root *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skippedElements[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				builder.WriteString(text)
				builder.WriteString("\n")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return strings.TrimSpace(builder.String())
}
