package echoapi

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

func Test_server_home(t *testing.T) {
	env := setup(t)
	rec := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bienvenido a la API de SISCON!", rec.Body.String())
}

func Test_server_metrics(t *testing.T) {
	env := setup(t)
	_, _, consultaToken := env.users(t)

	env.do(http.MethodGet, "/api/docentes", consultaToken)
	env.do(http.MethodGet, "/api/docentes", "")

	rec := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `siscon_http_requests_total{method="GET",route="/api/docentes",status="200"} 1`)
	assert.Contains(t, body, `siscon_http_requests_total{method="GET",route="/api/docentes",status="401"} 1`)
	assert.Contains(t, body, "siscon_http_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func Test_server_unknownRoute(t *testing.T) {
	env := setup(t)
	rec := env.do(http.MethodGet, "/api/nada", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_syncApi_googleSheets(t *testing.T) {
	env := setup(t)
	adminToken, asistenteToken, _ := env.users(t)

	runHTTPTests(t, env, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/api/sync/google-sheets", wantCode: http.StatusUnauthorized},
		{name: "admin only", method: http.MethodPost, path: "/api/sync/google-sheets", token: asistenteToken, wantCode: http.StatusForbidden},
		{
			name: "not configured", method: http.MethodPost, path: "/api/sync/google-sheets", token: adminToken,
			wantCode: http.StatusServiceUnavailable, wantData: marshalObj(t, httpErr{Error: "servicio no configurado"}),
		},
	})
}

func Test_googleAuthApi(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		env := setup(t)
		runHTTPTests(t, env, []httpTest{
			{name: "redirect", path: "/api/auth/google", wantCode: http.StatusServiceUnavailable},
			{name: "callback", path: "/api/auth/google/callback?state=x&code=y", wantCode: http.StatusServiceUnavailable},
		})
	})

	t.Run("configured", func(t *testing.T) {
		env := setup(t, func(conf *core.Config) {
			conf.Google.ClientID = "client-id"
			conf.Google.ClientSecret = "client-secret"
			conf.Google.RedirectURL = "http://localhost:8000/api/auth/google/callback"
		})

		rec := env.do(http.MethodGet, "/api/auth/google", "")
		require.Equal(t, http.StatusFound, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(loc.String(), "https://accounts.google.com/"), loc.String())
		assert.Equal(t, "client-id", loc.Query().Get("client_id"))
		assert.NotEmpty(t, loc.Query().Get("state"))

		// states are single-use and issued by us
		rec = env.do(http.MethodGet, "/api/auth/google/callback?state=forged&code=y", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
