package gemini

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/aihorizon/horizon/internal/core/domain"
)

// FileStore mirrors accepted artifacts into a named Gemini file-search store
// so grounded chat can cite them.
type FileStore struct {
	client    *Client
	storeName string
}

func NewFileStore(client *Client, storeName string) *FileStore {
	return &FileStore{client: client, storeName: storeName}
}

func (f *FileStore) UploadArtifact(ctx context.Context, artifact *domain.Artifact) error {
	if artifact == nil {
		return fmt.Errorf("upload: nil artifact")
	}
	document := renderArtifactDocument(artifact)

	return f.client.exec.ExecuteGeneration(ctx, "gemini_upload", f.client.keys.Len(),
		func(ctx context.Context, slot int) error {
			return f.client.uploadDocument(ctx, f.client.keys.Key(slot), f.storeName, artifact, document)
		})
}

// renderArtifactDocument flattens the artifact into the plain-text form the
// retrieval store indexes. Structured fields go first so short snippets still
// carry the verdict.
func renderArtifactDocument(artifact *domain.Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", artifact.Title)
	fmt.Fprintf(&b, "Source: %s\n", artifact.SourceURL)
	fmt.Fprintf(&b, "Classification: %s (confidence %.2f)\n", artifact.Classification, artifact.Confidence)
	if artifact.Rationale != "" {
		fmt.Fprintf(&b, "Rationale: %s\n", artifact.Rationale)
	}
	for _, task := range artifact.DCWFTasks {
		fmt.Fprintf(&b, "Task %s: %s (relevance %.2f)\n", task.TaskID, task.TaskName, task.RelevanceScore)
	}
	if len(artifact.WorkRoles) > 0 {
		fmt.Fprintf(&b, "Work roles: %s\n", strings.Join(artifact.WorkRoles, ", "))
	}
	for _, finding := range artifact.KeyFindings {
		fmt.Fprintf(&b, "Finding: %s\n", finding)
	}
	b.WriteString("\n")
	b.WriteString(artifact.Content)
	return b.String()
}

func (c *Client) uploadDocument(ctx context.Context, apiKey, storeName string, artifact *domain.Artifact, document string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return fmt.Errorf("create upload metadata: %w", err)
	}
	fmt.Fprintf(metaPart, `{"display_name":%q}`, artifact.ID+".txt")

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return fmt.Errorf("create upload body: %w", err)
	}
	if _, err := io.WriteString(filePart, document); err != nil {
		return fmt.Errorf("write upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish upload body: %w", err)
	}

	url := strings.Replace(c.baseURL, "/v1beta", "/upload/v1beta", 1) +
		"/" + storeName + ":uploadToFileSearchStore"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "upload",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}
