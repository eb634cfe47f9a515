package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// Модели отвечают долго; таймаут транспорта, а не стадии.
	defaultHTTPTimeout = 5 * time.Minute
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
	maxErrorBody       = 1024
)

// HTTPOperation — операция, доступная как HTTP endpoint.
//
// Отправляет payload как JSON методом POST и возвращает тело ответа как есть.
//
// Пример конфигурации (enricher.yaml):
//
//	catalog:
//	  endpoints:
//	    extractskills___jd_extract_jd_skills: http://tools:8000/jd/skills
//	    responsibilities___jd_responsibility_extractor: http://tools:8000/jd/responsibilities
type HTTPOperation struct {
	name    string
	url     string
	headers map[string]string
	tokens  oauth2.TokenSource
	client  *http.Client
}

// HTTPOption настраивает HTTPOperation.
type HTTPOption func(*HTTPOperation)

// WithHTTPClient задаёт HTTP клиент.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(o *HTTPOperation) {
		o.client = c
	}
}

// WithHeader добавляет заголовок к каждому запросу.
func WithHeader(key, value string) HTTPOption {
	return func(o *HTTPOperation) {
		o.headers[key] = value
	}
}

// WithTokenSource включает bearer-авторизацию.
func WithTokenSource(ts oauth2.TokenSource) HTTPOption {
	return func(o *HTTPOperation) {
		o.tokens = ts
	}
}

// NewHTTPOperation создаёт операцию для endpoint.
func NewHTTPOperation(name, url string, opts ...HTTPOption) *HTTPOperation {
	o := &HTTPOperation{
		name:    name,
		url:     url,
		headers: make(map[string]string),
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewHTTPRegistry создаёт реестр HTTP операций по карте имя → URL.
func NewHTTPRegistry(endpoints map[string]string, opts ...HTTPOption) *Registry {
	r := NewRegistry()
	for name, url := range endpoints {
		r.Register(NewHTTPOperation(name, url, opts...))
	}
	return r
}

// Name возвращает имя операции.
func (o *HTTPOperation) Name() string {
	return o.name
}

// Invoke выполняет POST запрос с payload.
func (o *HTTPOperation) Invoke(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serialize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range o.headers {
		req.Header.Set(key, value)
	}

	token, err := bearer(o.tokens)
	if err != nil {
		return "", err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		text := string(data)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return "", &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       text,
		}
	}

	return string(data), nil
}

// HTTPError — ошибка HTTP запроса.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error реализует интерфейс error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// IsHTTPError проверяет, является ли ошибка HTTP ошибкой.
func IsHTTPError(err error) bool {
	_, ok := err.(*HTTPError)
	return ok
}
