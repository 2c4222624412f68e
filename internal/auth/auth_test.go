package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewOAuthConfig(t *testing.T) {
	cfg := NewOAuthConfig(Config{ClientID: "123", ClientSecret: "shh", RedirectURL: "http://localhost:8089/callback"})

	assert.Equal(t, AuthURL, cfg.Endpoint.AuthURL)
	assert.Equal(t, TokenURL, cfg.Endpoint.TokenURL)

	u := cfg.AuthCodeURL("xyz")
	assert.Contains(t, u, "client_id=123")
	assert.Contains(t, u, "state=xyz")
	assert.Contains(t, u, "CALENDAR%3AWRITE")
}

func TestExtractAthlete(t *testing.T) {
	tests := []struct {
		name     string
		extra    map[string]interface{}
		wantID   string
		wantName string
	}{
		{
			name:     "string id",
			extra:    map[string]interface{}{"athlete": map[string]interface{}{"id": "i12345", "name": "Jo"}},
			wantID:   "i12345",
			wantName: "Jo",
		},
		{
			name:   "numeric id",
			extra:  map[string]interface{}{"athlete": map[string]interface{}{"id": float64(987)}},
			wantID: "i987",
		},
		{
			name:  "no athlete",
			extra: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := (&oauth2.Token{AccessToken: "a"}).WithExtra(tt.extra)
			id, name := ExtractAthlete(token)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    bool
	}{
		{"success", "?state=s1&code=abc", http.StatusOK, "abc", false},
		{"state mismatch", "?state=other&code=abc", http.StatusBadRequest, "", true},
		{"denied", "?state=s1&error=access_denied", http.StatusBadRequest, "", true},
		{"missing code", "?state=s1", http.StatusBadRequest, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errChan := make(chan error, 1)
			h := callbackHandler("s1", codeChan, errChan)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErr {
				require.Len(t, errChan, 1)
				assert.Error(t, <-errChan)
				return
			}
			require.Len(t, codeChan, 1)
			assert.Equal(t, tt.wantCode, <-codeChan)
		})
	}
}

func TestCallbackHandlerDoesNotBlock(t *testing.T) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)
	h := callbackHandler("s1", codeChan, errChan)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=bad", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	assert.ErrorIs(t, <-errChan, ErrStateMismatch)
}

func TestTokenSourceRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","token_type":"Bearer","refresh_token":"new-refresh","expires_in":3600}`))
	}))
	defer srv.Close()

	cfg := &oauth2.Config{
		ClientID: "id",
		Endpoint: oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams},
	}
	old := &oauth2.Token{AccessToken: "old-access", RefreshToken: "old-refresh", Expiry: time.Now().Add(-time.Minute)}

	var persisted *oauth2.Token
	ts := NewTokenSource(cfg, old, func(tok *oauth2.Token) error {
		persisted = tok
		return nil
	})
	assert.True(t, expiring(ts.token))

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok.AccessToken)
	require.NotNil(t, persisted)
	assert.Equal(t, "new-refresh", persisted.RefreshToken)
	assert.False(t, expiring(ts.token))
	assert.Equal(t, tok, ts.token)
}

func TestTokenSourceWithoutExpiry(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "forever"}
	ts := NewTokenSource(&oauth2.Config{}, tok, func(*oauth2.Token) error {
		t.Fatal("token without expiry must not refresh")
		return nil
	})

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "forever", got.AccessToken)
	assert.False(t, expiring(ts.token))
}
