package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aihorizon/horizon/internal/core/domain"
	"github.com/aihorizon/horizon/internal/core/ports"
	"github.com/aihorizon/horizon/internal/core/usecase"
	"github.com/aihorizon/horizon/internal/observability/metrics"
)

type Config struct {
	ServiceName    string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInflight    int
	MaxUploadBytes int64
	AdminToken     string
}

type Router struct {
	submitUC ports.ArtifactSubmitter
	chatUC   ports.ChatService
	searchUC ports.EvidenceSearcher
	statsUC  *usecase.StatsUseCase
	adminUC  *usecase.AdminUseCase
	repo     ports.ArtifactRepository
	metrics  *metrics.HTTPServerMetrics
	cfg      Config
}

func NewRouter(
	submitUC ports.ArtifactSubmitter,
	chatUC ports.ChatService,
	searchUC ports.EvidenceSearcher,
	statsUC *usecase.StatsUseCase,
	adminUC *usecase.AdminUseCase,
	repo ports.ArtifactRepository,
	httpMetrics *metrics.HTTPServerMetrics,
	cfg Config,
) *Router {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "horizon-api"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 16 << 20
	}
	return &Router{
		submitUC: submitUC,
		chatUC:   chatUC,
		searchUC: searchUC,
		statsUC:  statsUC,
		adminUC:  adminUC,
		repo:     repo,
		metrics:  httpMetrics,
		cfg:      cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/chat", rt.chat)
	mux.HandleFunc("/api/search", rt.search)
	mux.HandleFunc("/api/submit", rt.submit)
	mux.HandleFunc("/api/upload", rt.upload)
	mux.HandleFunc("/api/artifacts/", rt.artifactByID)
	mux.HandleFunc("/api/admin/artifacts/", rt.deleteArtifact)
	mux.HandleFunc("/api/resources", rt.resources)
	mux.HandleFunc("/api/stats", rt.stats)
	mux.HandleFunc("/api/roles", rt.roles)

	var handler http.Handler = mux
	handler = backpressureMiddleware(rt.cfg.MaxInflight, handler)
	handler = rateLimitMiddleware(rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst, handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, err := rt.chatUC.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordChatObservation(rt.cfg.ServiceName, len(result.Sources), time.Since(start))
	writeJSON(w, http.StatusOK, result)
}

// search accepts both GET query parameters and a POST JSON body; the two
// forms describe the same task query.
func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	var query string
	var filter domain.SearchFilter
	var limit int

	switch r.Method {
	case http.MethodGet:
		params := r.URL.Query()
		query = params.Get("q")
		if query == "" {
			query = params.Get("query")
		}
		filter = domain.SearchFilter{
			Classification: params.Get("classification"),
			WorkRole:       params.Get("job_role"),
			AITool:         params.Get("ai_tool"),
			TaskID:         params.Get("dcwf_task"),
		}
		limit = intParam(params.Get("limit"))
	case http.MethodPost:
		var req struct {
			Query          string `json:"query"`
			Classification string `json:"classification"`
			WorkRole       string `json:"job_role"`
			AITool         string `json:"ai_tool"`
			TaskID         string `json:"dcwf_task"`
			Limit          int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		query = req.Query
		filter = domain.SearchFilter{
			Classification: req.Classification,
			WorkRole:       req.WorkRole,
			AITool:         req.AITool,
			TaskID:         req.TaskID,
		}
		limit = req.Limit
	default:
		methodNotAllowed(w)
		return
	}

	if strings.TrimSpace(query) == "" && filter.Empty() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query or a filter is required"})
		return
	}

	result, err := rt.searchUC.SearchTasks(r.Context(), query, filter, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Tasks == nil {
		result.Tasks = []domain.TaskSummary{}
	}
	payload := map[string]any{
		"tasks": result.Tasks,
		"count": len(result.Tasks),
	}
	if result.Source != "" {
		payload["source"] = result.Source
	}
	if result.Message != "" {
		payload["message"] = result.Message
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req domain.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.submitUC.Submit(r.Context(), req)
	if err != nil {
		rt.metrics.RecordSubmission(rt.cfg.ServiceName, "error")
		writeError(w, err)
		return
	}
	rt.metrics.RecordSubmission(rt.cfg.ServiceName, submissionOutcome(result))
	writeJSON(w, http.StatusOK, result)
}

func submissionOutcome(result *domain.SubmitResult) string {
	switch {
	case result == nil:
		return "unknown"
	case result.IsDuplicate:
		return "duplicate"
	case result.Stored:
		return "stored"
	case !result.IsRelevant:
		return "irrelevant"
	default:
		return "rejected"
	}
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, rt.cfg.MaxUploadBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read uploaded file"})
		return
	}
	if int64(len(data)) > rt.cfg.MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
		return
	}

	result, err := rt.submitUC.Upload(r.Context(), fileHeader.Filename, r.FormValue("title"), data)
	if err != nil {
		rt.metrics.RecordSubmission(rt.cfg.ServiceName, "error")
		writeError(w, err)
		return
	}
	rt.metrics.RecordSubmission(rt.cfg.ServiceName, submissionOutcome(result))
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) artifactByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/artifacts/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artifact id is required"})
		return
	}

	artifact, err := rt.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (rt *Router) deleteArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if rt.cfg.AdminToken != "" && r.Header.Get("X-Admin-Token") != rt.cfg.AdminToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/admin/artifacts/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artifact id is required"})
		return
	}

	if err := rt.adminUC.DeleteArtifact(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "artifact_id": id})
}

func (rt *Router) resources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	params := r.URL.Query()
	req := domain.ResourceQuery{
		WorkRole:       params.Get("work_role"),
		ResourceType:   params.Get("resource_type"),
		Difficulty:     params.Get("difficulty"),
		TaskID:         params.Get("dcwf_task"),
		Classification: params.Get("classification"),
		Query:          params.Get("q"),
		Page:           intParam(params.Get("page")),
		Limit:          intParam(params.Get("limit")),
	}
	if raw := params.Get("is_free"); raw != "" {
		isFree, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_free must be a boolean"})
			return
		}
		req.IsFree = &isFree
	}

	page, err := rt.searchUC.Resources(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	stats, err := rt.statsUC.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) roles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	roles, err := rt.statsUC.WorkRoles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func intParam(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
