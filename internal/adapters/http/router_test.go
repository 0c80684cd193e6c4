package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/usecase"
)

type submitterFake struct {
	submitted *domain.SubmitRequest
	uploaded  struct {
		filename string
		title    string
		data     []byte
	}
	result *domain.SubmitResult
	err    error
}

func (f *submitterFake) Submit(_ context.Context, req domain.SubmitRequest) (*domain.SubmitResult, error) {
	f.submitted = &req
	return f.result, f.err
}

func (f *submitterFake) Upload(_ context.Context, filename, title string, data []byte) (*domain.SubmitResult, error) {
	f.uploaded.filename = filename
	f.uploaded.title = title
	f.uploaded.data = data
	return f.result, f.err
}

type chatFake struct {
	sessionID string
	message   string
	result    *domain.ChatResult
	err       error
}

func (f *chatFake) Chat(_ context.Context, sessionID, message string) (*domain.ChatResult, error) {
	f.sessionID = sessionID
	f.message = message
	return f.result, f.err
}

type searcherFake struct {
	query  string
	filter domain.SearchFilter
	limit  int
	result *domain.TaskSearchResult
	page   *domain.ResourcePage

	resourceQuery domain.ResourceQuery
}

func (f *searcherFake) SearchTasks(_ context.Context, query string, filter domain.SearchFilter, limit int) (*domain.TaskSearchResult, error) {
	f.query = query
	f.filter = filter
	f.limit = limit
	if f.result != nil {
		return f.result, nil
	}
	return &domain.TaskSearchResult{}, nil
}

func (f *searcherFake) Resources(_ context.Context, req domain.ResourceQuery) (*domain.ResourcePage, error) {
	f.resourceQuery = req
	return f.page, nil
}

type registryFake struct {
	artifacts  []domain.Artifact
	deletedIDs []string
	deleteErr  error
	statsErr   error
}

func (f *registryFake) ListAll(context.Context) ([]domain.Artifact, error) { return f.artifacts, nil }

func (f *registryFake) Insert(context.Context, *domain.Artifact) error { return nil }

func (f *registryFake) FindByID(_ context.Context, id string) (*domain.Artifact, error) {
	for i := range f.artifacts {
		if f.artifacts[i].ID == id {
			return &f.artifacts[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrArtifactNotFound, "find artifact", errors.New(id))
}

func (f *registryFake) FindByURL(context.Context, string) (*domain.Artifact, error) {
	return nil, nil
}

func (f *registryFake) FindByURLFragment(context.Context, string) (*domain.Artifact, error) {
	return nil, nil
}

func (f *registryFake) DeleteByID(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *registryFake) AggregateStats(context.Context) (domain.RegistryStats, error) {
	if f.statsErr != nil {
		return domain.RegistryStats{}, f.statsErr
	}
	return domain.RegistryStats{
		Total:           len(f.artifacts),
		Classifications: map[string]int{"Augment": len(f.artifacts)},
		SourceTypes:     map[string]int{"web": len(f.artifacts)},
	}, nil
}

type corpusStub struct {
	artifacts []domain.Artifact
	reloads   int
}

func (c *corpusStub) Reload(context.Context) error    { c.reloads++; return nil }
func (c *corpusStub) Append(domain.Artifact)          {}
func (c *corpusStub) All() []domain.Artifact          { return c.artifacts }
func (c *corpusStub) Len() int                        { return len(c.artifacts) }
func (c *corpusStub) Search(string, int) []domain.Artifact {
	return nil
}
func (c *corpusStub) SearchTasks(string, domain.SearchFilter, int) []domain.TaskSummary {
	return nil
}

type routerFixture struct {
	submitter *submitterFake
	chat      *chatFake
	searcher  *searcherFake
	registry  *registryFake
	corpus    *corpusStub
	handler   http.Handler
}

func newRouterFixture(t *testing.T, cfg Config) *routerFixture {
	t.Helper()
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 1000
		cfg.RateLimitBurst = 1000
	}
	if cfg.MaxInflight == 0 {
		cfg.MaxInflight = 64
	}

	f := &routerFixture{
		submitter: &submitterFake{result: &domain.SubmitResult{Success: true, Stored: true, ArtifactID: "a-1"}},
		chat:      &chatFake{result: &domain.ChatResult{Output: "hello", SessionID: "s-1"}},
		searcher:  &searcherFake{page: &domain.ResourcePage{Resources: []domain.Artifact{}}},
		registry:  &registryFake{},
		corpus:    &corpusStub{},
	}
	router := NewRouter(
		f.submitter,
		f.chat,
		f.searcher,
		usecase.NewStatsUseCase(f.registry, f.corpus),
		usecase.NewAdminUseCase(f.registry, f.corpus),
		f.registry,
		nil,
		cfg,
	)
	f.handler = router.Handler()
	return f
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := doJSON(t, f.handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id header on response")
	}
}

func TestChatForwardsSessionAndMessage(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := doJSON(t, f.handler, http.MethodPost, "/api/chat", map[string]string{
		"message":    "what tasks can AI augment?",
		"session_id": "s-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.chat.sessionID != "s-1" || f.chat.message != "what tasks can AI augment?" {
		t.Fatalf("chat called with session=%q message=%q", f.chat.sessionID, f.chat.message)
	}

	var result domain.ChatResult
	decodeBody(t, rec, &result)
	if result.Output != "hello" {
		t.Fatalf("output = %q", result.Output)
	}
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	f := newRouterFixture(t, Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchGetBuildsFilterFromQueryParams(t *testing.T) {
	f := newRouterFixture(t, Config{})
	f.searcher.result = &domain.TaskSearchResult{
		Tasks:  []domain.TaskSummary{{TaskID: "AN-T1019"}},
		Source: "local",
	}

	rec := doJSON(t, f.handler, http.MethodGet,
		"/api/search?q=threat+intel&classification=Augment&job_role=Analyst&limit=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.searcher.query != "threat intel" {
		t.Fatalf("query = %q", f.searcher.query)
	}
	if f.searcher.filter.Classification != "Augment" || f.searcher.filter.WorkRole != "Analyst" {
		t.Fatalf("filter = %+v", f.searcher.filter)
	}
	if f.searcher.limit != 7 {
		t.Fatalf("limit = %d", f.searcher.limit)
	}

	var body struct {
		Tasks  []domain.TaskSummary `json:"tasks"`
		Count  int                  `json:"count"`
		Source string               `json:"source"`
	}
	decodeBody(t, rec, &body)
	if body.Count != 1 || body.Tasks[0].TaskID != "AN-T1019" {
		t.Fatalf("body = %+v", body)
	}
	if body.Source != "local" {
		t.Fatalf("source = %q", body.Source)
	}
}

func TestSearchSurfacesFallbackMessage(t *testing.T) {
	f := newRouterFixture(t, Config{})
	f.searcher.result = &domain.TaskSearchResult{
		Tasks:   []domain.TaskSummary{},
		Message: "Rate limit reached. Please wait a minute and try again.",
	}

	rec := doJSON(t, f.handler, http.MethodGet, "/api/search?q=triage", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Count   int    `json:"count"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	if body.Count != 0 || !strings.Contains(body.Message, "Rate limit reached") {
		t.Fatalf("body = %+v", body)
	}
}

func TestSearchPostAcceptsJSONBody(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := doJSON(t, f.handler, http.MethodPost, "/api/search", map[string]any{
		"query":     "phishing triage",
		"dcwf_task": "PR-T0503",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.searcher.query != "phishing triage" || f.searcher.filter.TaskID != "PR-T0503" {
		t.Fatalf("query=%q filter=%+v", f.searcher.query, f.searcher.filter)
	}
}

func TestSearchRequiresQueryOrFilter(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := doJSON(t, f.handler, http.MethodGet, "/api/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "submit", errors.New("empty")), http.StatusBadRequest},
		{"rate limited", domain.WrapError(domain.ErrRateLimited, "submit", errors.New("exhausted")), http.StatusTooManyRequests},
		{"temporary", domain.WrapError(domain.ErrTemporary, "submit", errors.New("down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRouterFixture(t, Config{})
			f.submitter.result = nil
			f.submitter.err = tc.err

			rec := doJSON(t, f.handler, http.MethodPost, "/api/submit", map[string]string{"url": "https://example.com"})
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestSubmitForwardsRequest(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := doJSON(t, f.handler, http.MethodPost, "/api/submit", map[string]any{
		"url":       "https://example.com/report",
		"work_role": "Incident Responder",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.submitter.submitted == nil || f.submitter.submitted.URL != "https://example.com/report" {
		t.Fatalf("submitted = %+v", f.submitter.submitted)
	}
	if f.submitter.submitted.WorkRole != "Incident Responder" {
		t.Fatalf("work role = %q", f.submitter.submitted.WorkRole)
	}
}

func uploadRequest(t *testing.T, title, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if title != "" {
		if err := writer.WriteField("title", title); err != nil {
			t.Fatalf("write title: %v", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadForwardsFile(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, uploadRequest(t, "Playbook", "playbook.txt", []byte("content here")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.submitter.uploaded.filename != "playbook.txt" || f.submitter.uploaded.title != "Playbook" {
		t.Fatalf("uploaded = %+v", f.submitter.uploaded)
	}
	if string(f.submitter.uploaded.data) != "content here" {
		t.Fatalf("data = %q", f.submitter.uploaded.data)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	f := newRouterFixture(t, Config{MaxUploadBytes: 8})

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, uploadRequest(t, "", "big.txt", bytes.Repeat([]byte("x"), 64)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestArtifactByID(t *testing.T) {
	f := newRouterFixture(t, Config{})
	f.registry.artifacts = []domain.Artifact{{ID: "a-1", Title: "Evidence"}}

	rec := doJSON(t, f.handler, http.MethodGet, "/api/artifacts/a-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var artifact domain.Artifact
	decodeBody(t, rec, &artifact)
	if artifact.Title != "Evidence" {
		t.Fatalf("title = %q", artifact.Title)
	}

	rec = doJSON(t, f.handler, http.MethodGet, "/api/artifacts/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteArtifactRequiresAdminToken(t *testing.T) {
	f := newRouterFixture(t, Config{AdminToken: "secret"})
	f.registry.artifacts = []domain.Artifact{{ID: "a-1"}}

	rec := doJSON(t, f.handler, http.MethodDelete, "/api/admin/artifacts/a-1", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}
	if len(f.registry.deletedIDs) != 0 {
		t.Fatal("delete must not run without the admin token")
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/artifacts/a-1", nil)
	req.Header.Set("X-Admin-Token", "secret")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(f.registry.deletedIDs) != 1 || f.registry.deletedIDs[0] != "a-1" {
		t.Fatalf("deleted = %v", f.registry.deletedIDs)
	}
	if f.corpus.reloads != 1 {
		t.Fatalf("corpus reloads = %d, want 1", f.corpus.reloads)
	}
}

func TestResourcesParsesQueryParams(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := doJSON(t, f.handler, http.MethodGet, "/api/resources?is_free=true&page=2&limit=10&work_role=Analyst", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	q := f.searcher.resourceQuery
	if q.IsFree == nil || !*q.IsFree {
		t.Fatalf("is_free = %v, want true", q.IsFree)
	}
	if q.Page != 2 || q.Limit != 10 || q.WorkRole != "Analyst" {
		t.Fatalf("query = %+v", q)
	}

	rec = doJSON(t, f.handler, http.MethodGet, "/api/resources?is_free=maybe", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status for bad is_free = %d, want 400", rec.Code)
	}
}

func TestStatsAndRoles(t *testing.T) {
	f := newRouterFixture(t, Config{})
	f.registry.artifacts = []domain.Artifact{{ID: "a-1"}}
	f.corpus.artifacts = []domain.Artifact{{ID: "a-1", WorkRoles: []string{"Analyst"}}}

	rec := doJSON(t, f.handler, http.MethodGet, "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats domain.RegistryStats
	decodeBody(t, rec, &stats)
	if stats.Total != 1 {
		t.Fatalf("total = %d", stats.Total)
	}

	rec = doJSON(t, f.handler, http.MethodGet, "/api/roles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("roles status = %d", rec.Code)
	}
	var roles struct {
		Roles []string `json:"roles"`
	}
	decodeBody(t, rec, &roles)
	if len(roles.Roles) != 1 || roles.Roles[0] != "Analyst" {
		t.Fatalf("roles = %v", roles.Roles)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newRouterFixture(t, Config{})

	rec := doJSON(t, f.handler, http.MethodGet, "/api/submit", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
