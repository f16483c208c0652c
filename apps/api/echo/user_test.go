package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
	testutil "github.com/JoanAquinoVasquez/SISCON-sub000/tests"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Ana", "ana", "ana@unprg.edu.pe", "Pass!234", []string{user.RoleAsistente}, true)
	testutil.CreateUser(t, env.usrRepo, "Inactivo", "inactivo", "inactivo@unprg.edu.pe", "Pass!234", nil, false)
	testutil.CreateUser(t, env.usrRepo, "Google", "google", "google@unprg.edu.pe", "", nil, true)

	login := func(uname, pwd string) []byte {
		return marshalObj(t, LoginRequest{Username: uname, Password: pwd})
	}
	failed := marshalObj(t, httpErr{Error: "credenciales inválidas"})

	runHTTPTests(t, env, []httpTest{
		{name: "missing fields", method: http.MethodPost, path: "/api/users/login", body: []byte(`{}`), wantCode: http.StatusUnprocessableEntity},
		{name: "unknown user", method: http.MethodPost, path: "/api/users/login", body: login("nadie", "Pass!234"), wantCode: http.StatusBadRequest, wantData: failed},
		{name: "wrong password", method: http.MethodPost, path: "/api/users/login", body: login("ana", "wrong"), wantCode: http.StatusBadRequest, wantData: failed},
		{name: "user without password", method: http.MethodPost, path: "/api/users/login", body: login("google", "x"), wantCode: http.StatusBadRequest, wantData: failed},
		{
			name: "inactive user", method: http.MethodPost, path: "/api/users/login", body: login("inactivo", "Pass!234"),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "cuenta desactivada"}),
		},
	})

	t.Run("by username and by email", func(t *testing.T) {
		for _, uname := range []string{"ana", "ana@unprg.edu.pe"} {
			rec := env.do(http.MethodPost, "/api/users/login", "", login(uname, "Pass!234"))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp LoginResponse
			decode(t, rec, &resp)
			assert.NotEmpty(t, resp.Token)

			me := env.do(http.MethodGet, "/api/users/me", resp.Token)
			require.Equal(t, http.StatusOK, me.Code, me.Body.String())
			var usr user.User
			decode(t, me, &usr)
			assert.Equal(t, "ana", usr.Username)
			assert.False(t, usr.LastLogin.IsZero())
		}
	})
}

func Test_userApi_me(t *testing.T) {
	env := setup(t)
	adminToken, _, _ := env.users(t)

	runHTTPTests(t, env, []httpTest{
		{name: "auth required", path: "/api/users/me", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "bad token", path: "/api/users/me", token: "not-a-token", wantCode: http.StatusUnauthorized},
		{name: "ok", path: "/api/users/me", token: adminToken, wantCode: http.StatusOK},
	})
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)
	adminToken, asistenteToken, consultaToken := env.users(t)
	forbidden := marshalObj(t, httpErr{Error: "permiso denegado"})

	runHTTPTests(t, env, []httpTest{
		{name: "auth required", path: "/api/users", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "asistente forbidden", path: "/api/users", token: asistenteToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "consulta forbidden", path: "/api/users", token: consultaToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "roles", path: "/api/users/roles", token: adminToken, wantCode: http.StatusOK, wantData: marshalObj(t, user.Roles)},
	})

	t.Run("filter by role", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/users?role="+user.RoleConsulta, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decodeUserPage(t, rec)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "consulta", page.Data[0].Username)
	})
	t.Run("search", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/users?search=ASIST", adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decodeUserPage(t, rec)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "asistente", page.Data[0].Username)
	})
	t.Run("paginated", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/users?ordering=username&page=2&per_page=2", adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decodeUserPage(t, rec)
		assert.Equal(t, 2, page.CurrentPage)
		assert.Equal(t, 2, page.PerPage)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.LastPage)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "consulta", page.Data[0].Username)
	})
	t.Run("bad filter", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/users?is_active=quizas", adminToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})
}

type userPage struct {
	core.Page
	Data []user.User `json:"data"`
}

func decodeUserPage(t *testing.T, rec *httptest.ResponseRecorder) userPage {
	t.Helper()
	var page userPage
	decode(t, rec, &page)
	return page
}

func Test_userApi_refreshToken(t *testing.T) {
	env := setup(t)
	inactivo := testutil.CreateUser(t, env.usrRepo, "Inactivo", "inactivo", "inactivo@unprg.edu.pe", "", []string{user.RoleConsulta}, false)
	activo := testutil.CreateUser(t, env.usrRepo, "Activo", "activo", "activo@unprg.edu.pe", "", []string{user.RoleConsulta}, true)

	now := time.Now()
	expired := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    env.conf.AppName,
			Subject:   activo.ID,
			Audience:  "Posgrado",
			ExpiresAt: now.Add(env.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * env.conf.Server.JWTRefreshExpirationDelta).Unix(),
		Username:     activo.Username,
		Roles:        activo.Roles,
	}
	expiredToken, err := env.auth.generateToken(expired)
	require.NoError(t, err)

	path := "/api/users/token-refresh"
	runHTTPTests(t, env, []httpTest{
		{name: "auth required", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "inactive user", method: http.MethodPost, path: path, token: env.token(t, inactivo),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "cuenta desactivada"}),
		},
		{
			name: "refresh expired", method: http.MethodPost, path: path, token: expiredToken,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "la sesión ha expirado"}),
		},
		{name: "refreshed", method: http.MethodPost, path: path, token: env.token(t, activo), wantCode: http.StatusOK},
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Ana", "ana", "ana@unprg.edu.pe", "Pass!234", nil, true)

	body := func(email string) []byte { return marshalObj(t, PasswordResetRequest{Email: email}) }
	runHTTPTests(t, env, []httpTest{
		{name: "invalid email", method: http.MethodPost, path: "/api/users/password-reset", body: body("nope"), wantCode: http.StatusUnprocessableEntity},
		{name: "unknown email hides the error", method: http.MethodPost, path: "/api/users/password-reset", body: body("x@unprg.edu.pe"), wantCode: http.StatusOK},
		{name: "known email", method: http.MethodPost, path: "/api/users/password-reset", body: body("ana@unprg.edu.pe"), wantCode: http.StatusOK},
	})
}

func Test_userApi_retrieveAndDestroy(t *testing.T) {
	env := setup(t)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@unprg.edu.pe", "", []string{user.RoleAdmin}, true)
	owner := testutil.CreateUser(t, env.usrRepo, "Owner", "owner", "owner@unprg.edu.pe", "", []string{user.RoleAdminOwner}, true)
	consulta := testutil.CreateUser(t, env.usrRepo, "Consulta", "consulta", "consulta@unprg.edu.pe", "", []string{user.RoleConsulta}, true)
	other := testutil.CreateUser(t, env.usrRepo, "Otro", "otro", "otro@unprg.edu.pe", "", []string{user.RoleConsulta}, true)

	adminToken := env.token(t, admin)
	consultaToken := env.token(t, consulta)

	runHTTPTests(t, env, []httpTest{
		{name: "self", path: "/api/users/" + consulta.ID, token: consultaToken, wantCode: http.StatusOK},
		{name: "others hidden from non-admin", path: "/api/users/" + other.ID, token: consultaToken, wantCode: http.StatusNotFound},
		{name: "admin sees others", path: "/api/users/" + other.ID, token: adminToken, wantCode: http.StatusOK},
		{name: "unknown", path: "/api/users/unknown", token: adminToken, wantCode: http.StatusNotFound},
		{name: "cannot delete self", method: http.MethodDelete, path: "/api/users/" + admin.ID, token: adminToken, wantCode: http.StatusForbidden},
		{name: "cannot delete higher role", method: http.MethodDelete, path: "/api/users/" + owner.ID, token: adminToken, wantCode: http.StatusForbidden},
		{name: "non-admin cannot delete", method: http.MethodDelete, path: "/api/users/" + consulta.ID, token: consultaToken, wantCode: http.StatusForbidden},
		{name: "deleted", method: http.MethodDelete, path: "/api/users/" + other.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "gone", path: "/api/users/" + other.ID, token: adminToken, wantCode: http.StatusNotFound},
	})
}
