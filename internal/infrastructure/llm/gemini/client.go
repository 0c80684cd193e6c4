// Package gemini adapts the Gemini REST generateContent API to the Generator
// and KnowledgeStore ports. Calls run through the resilience executor with
// credential rotation, and every outgoing request passes a shared client-side
// rate limiter.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	baseURL    string
	model      string
	keys       *Keyring
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
}

type Options struct {
	BaseURL string
	Model   string
	// RequestsPerMinute throttles outgoing calls across all credentials.
	RequestsPerMinute int
	Timeout           time.Duration
}

func New(keys *Keyring, exec *resilience.Executor, opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	return &Client{
		baseURL:    baseURL,
		model:      opts.Model,
		keys:       keys,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		exec:       exec,
	}
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type tool struct {
	FileSearch *fileSearchTool `json:"file_search,omitempty"`
}

type fileSearchTool struct {
	FileSearchStoreNames []string `json:"file_search_store_names"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate runs one completion, rotating through the key ring on transient
// upstream failures. Exhaustion returns domain.ErrRateLimited.
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	body := buildGenerateRequest(req)

	var output string
	err := c.exec.ExecuteGeneration(ctx, "gemini_generate", c.keys.Len(),
		func(ctx context.Context, slot int) error {
			var response generateResponse
			path := fmt.Sprintf("/models/%s:generateContent", c.model)
			if err := c.postJSON(ctx, path, c.keys.Key(slot), body, &response, "generate"); err != nil {
				return err
			}
			text := firstCandidateText(response)
			if text == "" {
				return fmt.Errorf("generate: empty candidate response")
			}
			c.keys.Promote(slot)
			output = text
			return nil
		})
	if err != nil {
		return "", err
	}
	return output, nil
}

func buildGenerateRequest(req domain.GenerateRequest) generateRequest {
	out := generateRequest{}
	for _, turn := range req.History {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, content{
			Role:  role,
			Parts: []part{{Text: turn.Content}},
		})
	}
	out.Contents = append(out.Contents, content{
		Role:  "user",
		Parts: []part{{Text: req.Prompt}},
	})

	if strings.TrimSpace(req.SystemInstruction) != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.SystemInstruction}}}
	}
	if req.JSONMode {
		out.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}
	if len(req.KnowledgeStores) > 0 {
		out.Tools = []tool{{
			FileSearch: &fileSearchTool{FileSearchStoreNames: req.KnowledgeStores},
		}}
	}
	return out
}

func firstCandidateText(resp generateResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			builder.WriteString(p.Text)
		}
		break
	}
	return strings.TrimSpace(builder.String())
}
