package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Enricher/internal/catalog"
	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/engine"
	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/orchestrator"
	"github.com/shaiso/Enricher/internal/repo"
)

type fakeRequester struct {
	mu       sync.Mutex
	payloads []mq.EnrichRequestedPayload
	err      error
}

func (f *fakeRequester) PublishEnrichRequested(ctx context.Context, p mq.EnrichRequestedPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.payloads = append(f.payloads, p)
	return "req-1", nil
}

type fakeMetrics struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeMetrics) HTTPRequest(method string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method+" "+http.StatusText(status)]++
}

type testEnv struct {
	server     *httptest.Server
	jobs       *repo.MemStore
	candidates *repo.MemStore
	requester  *fakeRequester
	metrics    *fakeMetrics
}

// newTestEnv поднимает API поверх настоящего оркестратора и хранилищ в памяти.
// failing — имена инструментов, возвращающих ошибку.
func newTestEnv(t *testing.T, withTools bool, failing ...string) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := catalog.NewRegistry()
	if withTools {
		var tools []string
		for _, name := range orchestrator.DefaultJobTools() {
			tools = append(tools, name)
		}
		for _, name := range orchestrator.DefaultCandidateTools() {
			tools = append(tools, name)
		}
		for _, name := range tools {
			fail := false
			for _, f := range failing {
				fail = fail || f == name
			}
			registry.Register(engine.NewOperationFunc(name, func(ctx context.Context, payload map[string]any) (string, error) {
				if fail {
					return "", errors.New("tool unavailable")
				}
				return `{"tool": "` + name + `"}`, nil
			}))
		}
	}

	env := &testEnv{
		jobs:       repo.NewMemStore(domain.Record{"id": "j1", "jd_text": "Senior Go engineer", "title": "Engineer"}, domain.Record{"id": "j2"}),
		candidates: repo.NewMemStore(domain.Record{"id": "c1", "resume_text": "Go, Postgres", "job_id": "j1"}),
		requester:  &fakeRequester{},
		metrics:    &fakeMetrics{},
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Jobs:       env.jobs,
		Candidates: env.candidates,
		Catalog:    registry,
		Logger:     logger,
	})
	require.NoError(t, err)

	h := NewHandler(Config{
		Runner:     orch,
		Jobs:       env.jobs,
		Candidates: env.candidates,
		Requester:  env.requester,
		Metrics:    env.metrics,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "# metrics")
		}),
		Logger: logger,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func errorCode(body map[string]any) string {
	detail, _ := body["error"].(map[string]any)
	code, _ := detail["code"].(string)
	return code
}

func TestEnrich_Sync(t *testing.T) {
	env := newTestEnv(t, true)

	resp, body := env.do(t, http.MethodPost, "/api/v1/jobs/j1/enrich", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, "j1", data["id"])
	assert.Equal(t, true, data["updated"])
	assert.Equal(t, orchestrator.PipelineJob, data["pipeline"])
	assert.Equal(t, string(domain.RunStatusSucceeded), data["status"])
	assert.NotEmpty(t, data["run_id"])
	require.Contains(t, data, "errors")
	assert.Empty(t, data["errors"])
	assert.NotEmpty(t, data["results"])

	stored, err := env.jobs.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.True(t, stored.Has("skills"))
}

func TestEnrich_PartialFailureIsOK(t *testing.T) {
	env := newTestEnv(t, true, orchestrator.DefaultCandidateTools()[orchestrator.OpCandidatePI])

	resp, body := env.do(t, http.MethodPost, "/api/v1/candidates/c1/enrich", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, string(domain.RunStatusPartial), data["status"])
	assert.Equal(t, true, data["updated"])

	errs := data["errors"].(map[string]any)
	assert.Contains(t, errs, orchestrator.OpCandidatePI)
}

func TestEnrich_TerminalErrors(t *testing.T) {
	tests := []struct {
		name   string
		env    func(t *testing.T) *testEnv
		path   string
		status int
		code   ErrorCode
	}{
		{"missing id", func(t *testing.T) *testEnv { return newTestEnv(t, true) }, "/api/v1/jobs/%20/enrich", http.StatusBadRequest, ErrCodeBadRequest},
		{"not found", func(t *testing.T) *testEnv { return newTestEnv(t, true) }, "/api/v1/jobs/nope/enrich", http.StatusNotFound, ErrCodeNotFound},
		{"empty input", func(t *testing.T) *testEnv { return newTestEnv(t, true) }, "/api/v1/jobs/j2/enrich", http.StatusUnprocessableEntity, ErrCodeInvalidState},
		{"not resolved", func(t *testing.T) *testEnv { return newTestEnv(t, false) }, "/api/v1/jobs/j1/enrich", http.StatusBadGateway, ErrCodeBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.env(t)

			resp, body := env.do(t, http.MethodPost, tt.path, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, string(tt.code), errorCode(body))
			assert.Zero(t, env.jobs.Writes())
		})
	}
}

func TestEnrich_Async(t *testing.T) {
	env := newTestEnv(t, true)

	resp, body := env.do(t, http.MethodPost, "/api/v1/candidates/c1/enrich?async=true", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, "req-1", data["request_id"])

	require.Len(t, env.requester.payloads, 1)
	assert.Equal(t, mq.EnrichRequestedPayload{Pipeline: orchestrator.PipelineCandidate, ID: "c1", Source: mq.SourceAPI}, env.requester.payloads[0])
	assert.Zero(t, env.candidates.Writes(), "async request must not run the pipeline")

	resp, _ = env.do(t, http.MethodPost, "/api/v1/candidates/c1/enrich?async=maybe", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.requester.err = errors.New("broker down")
	resp, body = env.do(t, http.MethodPost, "/api/v1/candidates/c1/enrich?async=1", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, string(ErrCodeInternalError), errorCode(body))
}

func TestRecords_GetPut(t *testing.T) {
	env := newTestEnv(t, true)

	resp, body := env.do(t, http.MethodGet, "/api/v1/jobs/j1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Senior Go engineer", body["data"].(map[string]any)["jd_text"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/candidates/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(ErrCodeNotFound), errorCode(body))

	// id из тела игнорируется, AttributeValue нормализуется
	resp, body = env.do(t, http.MethodPut, "/api/v1/candidates/c9", `{"id":"other","resume_text":{"S":"Rust"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "c9", data["id"])
	assert.Equal(t, "Rust", data["resume_text"])

	stored, err := env.candidates.Get(context.Background(), "c9")
	require.NoError(t, err)
	assert.Equal(t, "Rust", stored["resume_text"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/jobs/j3", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, true)

	resp, body := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])

	resp, _ = env.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.do(t, http.MethodGet, "/api/v1/jobs/j1", "")
	env.do(t, http.MethodGet, "/api/v1/jobs/none", "")

	env.metrics.mu.Lock()
	defer env.metrics.mu.Unlock()
	assert.Equal(t, 1, env.metrics.calls["GET OK"])
	assert.Equal(t, 1, env.metrics.calls["GET Not Found"])
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(Recovery(logger), Logging(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
