package catalog

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenConfig — настройки bearer-токена для шлюза операций.
//
// Если задан Token, используется статический токен. Иначе при заданном
// TokenURL токен получается по OAuth2 client credentials.
type TokenConfig struct {
	Token        string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Enabled проверяет, что авторизация настроена.
func (c TokenConfig) Enabled() bool {
	return c.Token != "" || c.TokenURL != ""
}

// NewTokenSource создаёт источник токенов или nil, если авторизация не нужна.
// Токены client credentials кэшируются до истечения срока.
func NewTokenSource(ctx context.Context, cfg TokenConfig) oauth2.TokenSource {
	switch {
	case cfg.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	case cfg.TokenURL != "":
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.TokenSource(ctx)
	default:
		return nil
	}
}

// bearer возвращает токен доступа из источника.
// Пустая строка без ошибки — авторизация не используется.
func bearer(ts oauth2.TokenSource) (string, error) {
	if ts == nil {
		return "", nil
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	return tok.AccessToken, nil
}

// authHeaders возвращает заголовки авторизации для токена.
func authHeaders(token string) map[string]string {
	if token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + token}
}
