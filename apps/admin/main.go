package main

import (
	"context"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
	logsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/logger"
	sheetsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/sheets"
	"github.com/JoanAquinoVasquez/SISCON-sub000/storage/database"
	sqlxrepos "github.com/JoanAquinoVasquez/SISCON-sub000/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	tx := database.NewTransactor(db)
	docenteSvc := docente.NewService(sqlxrepos.NewDocenteRepository(db))
	programaSvc := programa.NewService(sqlxrepos.NewProgramaRepository(db), tx)
	cursoSvc := curso.NewService(sqlxrepos.NewCursoRepository(db), programaSvc)
	pagoSvc := pago.NewService(sqlxrepos.NewPagoRepository(db), docenteSvc, cursoSvc, conf.Payments)
	devolucionSvc := devolucion.NewService(sqlxrepos.NewDevolucionRepository(db), programaSvc)
	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)
	expedienteSvc := expediente.NewService(sqlxrepos.NewExpedienteRepository(db), tx, pagoSvc, devolucionSvc, svcLogger)

	sheets, err := sheetsvc.NewSyncer(
		context.Background(), conf.Google, report.NewService(pagoSvc, expedienteSvc, devolucionSvc), svcLogger)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: sqlxrepos.NewUserRepository(db),
		sheets:  sheets,
		out:     os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
