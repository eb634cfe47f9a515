package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Ресурсы API.
const (
	ResourceJobs       = "jobs"
	ResourceCandidates = "candidates"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// EnrichResponse — результат синхронного запуска пайплайна.
type EnrichResponse struct {
	RunID      string            `json:"run_id"`
	Pipeline   string            `json:"pipeline"`
	Status     string            `json:"status"`
	DurationMs int64             `json:"duration_ms"`
	ID         string            `json:"id"`
	Updated    bool              `json:"updated"`
	Results    map[string]any    `json:"results,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// AcceptedResponse — запрос поставлен в очередь.
type AcceptedResponse struct {
	RequestID string `json:"request_id"`
	Pipeline  string `json:"pipeline"`
	ID        string `json:"id"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError — ошибка, возвращённая API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// --- Client ---

// Client — HTTP-клиент для API обогащения.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
// Таймаут покрывает синхронный запуск пайплайна.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// Enrich синхронно запускает пайплайн для записи.
func (c *Client) Enrich(resource, id string) (*EnrichResponse, error) {
	var result EnrichResponse
	err := c.post(recordPath(resource, id)+"/enrich", nil, &result)
	return &result, err
}

// EnrichAsync ставит запрос обогащения в очередь.
func (c *Client) EnrichAsync(resource, id string) (*AcceptedResponse, error) {
	var result AcceptedResponse
	err := c.post(recordPath(resource, id)+"/enrich?async=true", nil, &result)
	return &result, err
}

// GetRecord возвращает документ записи.
func (c *Client) GetRecord(resource, id string) (map[string]any, error) {
	var record map[string]any
	err := c.get(recordPath(resource, id), &record)
	return record, err
}

// PutRecord создаёт или заменяет документ записи.
func (c *Client) PutRecord(resource, id string, doc json.RawMessage) (map[string]any, error) {
	var record map[string]any
	err := c.put(recordPath(resource, id), doc, &record)
	return record, err
}

func recordPath(resource, id string) string {
	return "/api/v1/" + resource + "/" + url.PathEscape(id)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
		apiErr.Code = er.Error.Code
		apiErr.Message = er.Error.Message
	}

	return apiErr
}
