package googleauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

func newTestProvider(t *testing.T, userinfo string, domain string) *Provider {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewProvider(core.GoogleConfig{
		ClientID:      "client",
		ClientSecret:  "secret",
		RedirectURL:   "http://localhost:8000/api/auth/google/callback",
		AllowedDomain: domain,
	})
	p.oauth.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	p.userInfoURL = srv.URL + "/userinfo"
	return p
}

func stateOf(t *testing.T, p *Provider) string {
	u, err := p.AuthCodeURL()
	require.NoError(t, err)
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	return parsed.Query().Get("state")
}

func TestProvider_Disabled(t *testing.T) {
	p := NewProvider(core.GoogleConfig{})
	_, err := p.AuthCodeURL()
	assert.Equal(t, ErrDisabled, err)
	_, err = p.Callback(context.Background(), "s", "c")
	assert.Equal(t, ErrDisabled, err)
}

func TestProvider_Callback(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		p := newTestProvider(t, `{"sub":"1","email":"Ana@UNPRG.edu.pe","email_verified":true,"name":"Ana","hd":"unprg.edu.pe"}`, "unprg.edu.pe")
		state := stateOf(t, p)

		info, err := p.Callback(ctx, state, "code")
		require.NoError(t, err)
		assert.Equal(t, "ana@unprg.edu.pe", info.Email)
		assert.Equal(t, "Ana", info.Name)

		// states are single-use
		_, err = p.Callback(ctx, state, "code")
		assert.Equal(t, ErrInvalidState, err)
	})

	t.Run("unknown state", func(t *testing.T) {
		p := newTestProvider(t, `{}`, "")
		_, err := p.Callback(ctx, "nope", "code")
		assert.Equal(t, ErrInvalidState, err)
	})

	t.Run("unverified email", func(t *testing.T) {
		p := newTestProvider(t, `{"email":"ana@gmail.com","email_verified":"false"}`, "")
		_, err := p.Callback(ctx, stateOf(t, p), "code")
		assert.Equal(t, ErrEmailNotVerified, err)
	})

	t.Run("domain not allowed", func(t *testing.T) {
		p := newTestProvider(t, `{"email":"ana@gmail.com","email_verified":true}`, "unprg.edu.pe")
		_, err := p.Callback(ctx, stateOf(t, p), "code")
		assert.Equal(t, ErrDomainNotAllowed, err)
	})
}
