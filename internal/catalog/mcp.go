package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/oauth2"

	"github.com/shaiso/Enricher/internal/engine"
)

const (
	defaultClientName    = "enricher"
	defaultClientVersion = "1.0.0"
)

// MCPConfig — настройки подключения к MCP шлюзу.
type MCPConfig struct {
	// URL — адрес streamable HTTP endpoint шлюза.
	URL string

	// TokenSource — источник bearer-токенов (nil — без авторизации).
	TokenSource oauth2.TokenSource

	// ClientName, ClientVersion — представление клиента при Initialize.
	ClientName    string
	ClientVersion string

	Logger *slog.Logger
}

// dialFunc открывает новую MCP сессию с заданными заголовками.
type dialFunc func(ctx context.Context, headers map[string]string) (*client.Client, error)

// MCPCatalog — каталог операций на MCP шлюзе.
//
// Каждый Lookup запрашивает список инструментов (каталог читается в начале
// каждого запуска). Сессия переиспользуется между запусками и пересоздаётся,
// если сменился токен или запрос списка завершился ошибкой. Заменённая
// сессия закрывается только после завершения вызовов, которые её используют.
type MCPCatalog struct {
	cfg    MCPConfig
	logger *slog.Logger
	dial   dialFunc

	mu      sync.Mutex
	session *mcpSession
}

// mcpSession — открытая сессия и число вызовов, которые её используют.
type mcpSession struct {
	client   *client.Client
	token    string
	inflight int
	retired  bool
	closed   bool
}

// NewMCPCatalog создаёт каталог. Подключение выполняется лениво.
func NewMCPCatalog(cfg MCPConfig) *MCPCatalog {
	if cfg.ClientName == "" {
		cfg.ClientName = defaultClientName
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = defaultClientVersion
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &MCPCatalog{
		cfg:    cfg,
		logger: logger,
	}
	c.dial = c.dialHTTP
	return c
}

// dialHTTP подключается к шлюзу по streamable HTTP.
func (c *MCPCatalog) dialHTTP(ctx context.Context, headers map[string]string) (*client.Client, error) {
	if c.cfg.URL == "" {
		return nil, ErrNoGateway
	}
	return client.NewStreamableHttpClient(c.cfg.URL, transport.WithHTTPHeaders(headers))
}

// Lookup возвращает операции шлюза по именам инструментов.
func (c *MCPCatalog) Lookup(ctx context.Context, names ...string) (map[string]engine.Operation, error) {
	available, err := c.listTools(ctx)
	if err != nil {
		c.logger.Warn("list tools failed, reconnecting", "error", err)
		c.reset()

		available, err = c.listTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list tools: %v", ErrOperationNotResolved, err)
		}
	}

	ops := make(map[string]engine.Operation, len(names))
	var missing []string
	for _, name := range names {
		if !available[name] {
			missing = append(missing, name)
			continue
		}
		ops[name] = &MCPOperation{name: name, catalog: c}
	}

	if len(missing) > 0 {
		return nil, notResolved(missing)
	}

	c.logger.Debug("tools resolved", "count", len(ops), "available", len(available))
	return ops, nil
}

// Close закрывает текущую сессию. Если по ней ещё идут вызовы,
// она закроется после последнего из них.
func (c *MCPCatalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	s := c.session
	c.session = nil
	return c.retire(s)
}

func (c *MCPCatalog) listTools(ctx context.Context) (map[string]bool, error) {
	session, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.release(session)

	res, err := session.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}

	available := make(map[string]bool, len(res.Tools))
	for _, tool := range res.Tools {
		available[tool.Name] = true
	}
	return available, nil
}

// acquire возвращает открытую сессию, переподключаясь при смене токена.
// Каждый acquire должен завершаться release.
func (c *MCPCatalog) acquire(ctx context.Context) (*mcpSession, error) {
	token, err := bearer(c.cfg.TokenSource)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.token == token {
		c.session.inflight++
		return c.session, nil
	}

	if c.session != nil {
		c.logger.Info("access token rotated, reconnecting")
		if err := c.retire(c.session); err != nil {
			c.logger.Debug("close session", "error", err)
		}
		c.session = nil
	}

	session, err := c.dial(ctx, authHeaders(token))
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	if err := session.Start(ctx); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    c.cfg.ClientName,
		Version: c.cfg.ClientVersion,
	}

	if _, err := session.Initialize(ctx, req); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	c.logger.Info("connected to tool gateway", "url", c.cfg.URL)

	c.session = &mcpSession{client: session, token: token, inflight: 1}
	return c.session, nil
}

// release отмечает завершение вызова и закрывает выведенную сессию,
// если вызовов по ней больше нет.
func (c *MCPCatalog) release(s *mcpSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s.inflight--
	if s.retired && s.inflight == 0 {
		if err := c.closeSession(s); err != nil {
			c.logger.Debug("close session", "error", err)
		}
	}
}

// retire выводит сессию из использования. Вызывается под c.mu.
func (c *MCPCatalog) retire(s *mcpSession) error {
	s.retired = true
	if s.inflight > 0 {
		return nil
	}
	return c.closeSession(s)
}

func (c *MCPCatalog) closeSession(s *mcpSession) error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func (c *MCPCatalog) reset() {
	if err := c.Close(); err != nil {
		c.logger.Debug("close session", "error", err)
	}
}

// MCPOperation — инструмент MCP шлюза.
type MCPOperation struct {
	name    string
	catalog *MCPCatalog
}

// Name возвращает имя инструмента.
func (o *MCPOperation) Name() string {
	return o.name
}

// Invoke вызывает инструмент и возвращает текстовое содержимое ответа.
func (o *MCPOperation) Invoke(ctx context.Context, payload map[string]any) (string, error) {
	session, err := o.catalog.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer o.catalog.release(session)

	req := mcp.CallToolRequest{}
	req.Params.Name = o.name
	req.Params.Arguments = payload

	res, err := session.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", o.name, err)
	}

	text := ToolText(res)
	if res.IsError {
		return "", fmt.Errorf("%w: %s: %s", ErrToolError, o.name, text)
	}
	return text, nil
}

// ToolText склеивает текстовые блоки результата инструмента как есть:
// один JSON-документ может быть разбит на несколько блоков.
func ToolText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	for _, content := range res.Content {
		switch tc := content.(type) {
		case mcp.TextContent:
			b.WriteString(tc.Text)
		case *mcp.TextContent:
			b.WriteString(tc.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
