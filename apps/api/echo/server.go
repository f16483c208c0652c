package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/filestore"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/googleauth"
	sheetsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/sheets"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		UserSvc        user.Service
		DocenteSvc     docente.Service
		ProgramaSvc    programa.Service
		CursoSvc       curso.Service
		CoordinadorSvc coordinador.Service
		PagoSvc        pago.Service
		ExpedienteSvc  expediente.Service
		DevolucionSvc  devolucion.Service
		ReportSvc      report.Service

		Documents *docgen.Generator
		Files     *filestore.LocalStore
		Sheets    *sheetsvc.Syncer // nil when Google Sheets is not configured
		Google    *googleauth.Provider
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{conf.FrontendBaseURL},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))

	metrics := newMetrics()
	s.app.Use(metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", metrics.handler())

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerUserAPI(api, jwt, s.auth, s.deps.UserSvc, s.deps.Validate)
	registerGoogleAuthAPI(api, s.auth, s.deps.Google, s.deps.UserSvc, conf)
	registerDocenteAPI(api, jwt, s.deps.DocenteSvc, s.deps.Validate)
	registerProgramaAPI(api, jwt, s.deps.ProgramaSvc, s.deps.Validate)
	registerCursoAPI(api, jwt, s.deps.CursoSvc, s.deps.Validate)
	registerCoordinadorAPI(api, jwt, s.deps.CoordinadorSvc, s.deps.Validate)
	registerPagoAPI(api, jwt, s.deps.PagoSvc, s.deps.ExpedienteSvc, s.deps.ReportSvc, s.deps.Documents, s.deps.Validate)
	registerExpedienteAPI(api, jwt, s.deps.ExpedienteSvc, s.deps.ReportSvc, s.deps.Files, s.deps.Validate, s.deps.Logger)
	registerDevolucionAPI(api, jwt, s.deps.DevolucionSvc, s.deps.ExpedienteSvc, s.deps.ReportSvc, s.deps.Documents, s.deps.Validate)
	registerSyncAPI(api, jwt, s.deps.Sheets)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bienvenido a la API de "+s.deps.Conf.AppName+"!")
}
