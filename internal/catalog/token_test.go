package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenSource_Static(t *testing.T) {
	ts := NewTokenSource(context.Background(), TokenConfig{Token: "static"})
	require.NotNil(t, ts)

	token, err := bearer(ts)
	require.NoError(t, err)
	assert.Equal(t, "static", token)
}

func TestNewTokenSource_Disabled(t *testing.T) {
	cfg := TokenConfig{}
	assert.False(t, cfg.Enabled())
	assert.Nil(t, NewTokenSource(context.Background(), cfg))

	token, err := bearer(nil)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, authHeaders(token))
}

func TestNewTokenSource_ClientCredentials(t *testing.T) {
	var requests int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer server.Close()

	cfg := TokenConfig{
		TokenURL:     server.URL,
		ClientID:     "enricher",
		ClientSecret: "secret",
		Scopes:       []string{"tools/invoke"},
	}
	assert.True(t, cfg.Enabled())

	ts := NewTokenSource(context.Background(), cfg)

	token, err := bearer(ts)
	require.NoError(t, err)
	assert.Equal(t, "cc-token", token)
	assert.Equal(t, map[string]string{"Authorization": "Bearer cc-token"}, authHeaders(token))

	// Токен кэшируется до истечения срока
	_, err = bearer(ts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}
