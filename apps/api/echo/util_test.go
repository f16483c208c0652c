package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/docgen"
	emailsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/email"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/filestore"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/googleauth"
	logsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/logger"
	sheetsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/sheets"
	inmemdb "github.com/JoanAquinoVasquez/SISCON-sub000/storage/database/inmem"
	testutil "github.com/JoanAquinoVasquez/SISCON-sub000/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// testEnv is a server backed by in-memory repositories.
type testEnv struct {
	app  Server
	conf *core.Config
	auth *authenticator
	mail *emailsvc.ConsoleService

	usrRepo      user.Repository
	docenteRepo  docente.Repository
	programaRepo programa.Repository
	cursoRepo    curso.Repository
	pagoRepo     pago.Repository
}

func setup(t *testing.T, confFns ...func(*core.Config)) *testEnv {
	t.Helper()

	conf := core.NewTestConfig()
	conf.Storage.MediaDir = t.TempDir()
	for _, fn := range confFns {
		fn(conf)
	}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.Open()
	tx := inmemdb.NewTransactor()
	env := &testEnv{
		conf:         conf,
		auth:         newAuthenticator(conf),
		mail:         emailsvc.NewConsoleServiceMock(conf),
		usrRepo:      inmemdb.NewUserRepository(db),
		docenteRepo:  inmemdb.NewDocenteRepository(db),
		programaRepo: inmemdb.NewProgramaRepository(db),
		cursoRepo:    inmemdb.NewCursoRepository(db),
		pagoRepo:     inmemdb.NewPagoRepository(db),
	}

	// set up services
	usrSvc := user.NewService(env.usrRepo, env.mail, conf)
	docenteSvc := docente.NewService(env.docenteRepo)
	programaSvc := programa.NewService(env.programaRepo, tx)
	cursoSvc := curso.NewService(env.cursoRepo, programaSvc)
	coordinadorSvc := coordinador.NewService(inmemdb.NewCoordinadorRepository(db), programaSvc)
	pagoSvc := pago.NewService(env.pagoRepo, docenteSvc, cursoSvc, conf.Payments)
	devolucionSvc := devolucion.NewService(inmemdb.NewDevolucionRepository(db), programaSvc)
	expedienteSvc := expediente.NewService(inmemdb.NewExpedienteRepository(db), tx, pagoSvc, devolucionSvc, logger)
	reportSvc := report.NewService(pagoSvc, expedienteSvc, devolucionSvc)

	sheets, err := sheetsvc.NewSyncer(context.Background(), conf.Google, reportSvc, logger)
	require.NoError(t, err)

	env.app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		DocenteSvc:     docenteSvc,
		ProgramaSvc:    programaSvc,
		CursoSvc:       cursoSvc,
		CoordinadorSvc: coordinadorSvc,
		PagoSvc:        pagoSvc,
		ExpedienteSvc:  expedienteSvc,
		DevolucionSvc:  devolucionSvc,
		ReportSvc:      reportSvc,
		Documents:      docgen.NewGenerator(conf, docenteSvc, cursoSvc, programaSvc, coordinadorSvc),
		Files:          filestore.NewLocalStore(conf.Storage),
		Sheets:         sheets,
		Google:         googleauth.NewProvider(conf.Google),
	})
	return env
}

// users creates an admin, an asistente and a read-only user and returns their tokens.
func (env *testEnv) users(t *testing.T) (adminToken, asistenteToken, consultaToken string) {
	t.Helper()
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@unprg.edu.pe", "", []string{user.RoleAdmin}, true)
	asistente := testutil.CreateUser(t, env.usrRepo, "Asistente", "asistente", "asistente@unprg.edu.pe", "", []string{user.RoleAsistente}, true)
	consulta := testutil.CreateUser(t, env.usrRepo, "Consulta", "consulta", "consulta@unprg.edu.pe", "", []string{user.RoleConsulta}, true)
	return env.token(t, admin), env.token(t, asistente), env.token(t, consulta)
}

func (env *testEnv) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := env.auth.generateToken(env.auth.userClaims(usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// do serves a JSON request and returns the recorder.
func (env *testEnv) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	env.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshalList() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env *testEnv, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := env.do(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
