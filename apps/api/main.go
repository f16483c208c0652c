package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"

	echoapi "github.com/JoanAquinoVasquez/SISCON-sub000/apps/api/echo"
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
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/scheduler"
	sheetsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/sheets"
	"github.com/JoanAquinoVasquez/SISCON-sub000/storage/database"
	sqlxrepos "github.com/JoanAquinoVasquez/SISCON-sub000/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	tx := database.NewTransactor(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, log.New(os.Stdout, "MAIL : ", log.LstdFlags))
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	docenteSvc := docente.NewService(sqlxrepos.NewDocenteRepository(db))
	programaSvc := programa.NewService(sqlxrepos.NewProgramaRepository(db), tx)
	cursoSvc := curso.NewService(sqlxrepos.NewCursoRepository(db), programaSvc)
	coordinadorSvc := coordinador.NewService(sqlxrepos.NewCoordinadorRepository(db), programaSvc)
	pagoSvc := pago.NewService(sqlxrepos.NewPagoRepository(db), docenteSvc, cursoSvc, conf.Payments)
	devolucionSvc := devolucion.NewService(sqlxrepos.NewDevolucionRepository(db), programaSvc)
	expedienteSvc := expediente.NewService(sqlxrepos.NewExpedienteRepository(db), tx, pagoSvc, devolucionSvc, logger)
	reportSvc := report.NewService(pagoSvc, expedienteSvc, devolucionSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	sheets, err := sheetsvc.NewSyncer(context.Background(), conf.Google, reportSvc, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up google sheets: %v", err), err)
	}

	// =========================================================================
	// Start Scheduled Jobs

	jobs := scheduler.New(logger, conf.Server.ShutdownTimeout)
	if sheets.Enabled() && conf.Google.SyncSchedule != "" {
		err = jobs.Add("google-sheets", conf.Google.SyncSchedule, func(ctx context.Context) error {
			_, err := sheets.Sync(ctx)
			return err
		})
		if err != nil {
			logger.Fatal(fmt.Sprintf("scheduling google sheets sync: %v", err), err)
		}
	}
	jobs.Start()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
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

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		jobs.Stop(ctx)

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
