package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/kymawa/ratiba/apps/api/echo"
	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/attendance"
	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/report"
	"github.com/kymawa/ratiba/core/schedule"
	"github.com/kymawa/ratiba/core/user"
	emailsvc "github.com/kymawa/ratiba/services/email"
	logsvc "github.com/kymawa/ratiba/services/logger"
	"github.com/kymawa/ratiba/storage/database"
	inmemdb "github.com/kymawa/ratiba/storage/database/inmem"
	sqlxrepos "github.com/kymawa/ratiba/storage/database/sqlx"
)

type repositories struct {
	users      user.Repository
	lectures   schedule.LectureRepository
	timetables schedule.TimetableRepository
	venues     schedule.VenueRepository
	courses    registration.CourseRepository
	semesters  registration.SemesterRepository
	units      registration.UnitRepository
	regs       registration.RegistrationRepository
	instances  attendance.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	repos, closeDB, err := setUpRepos(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer closeDB()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	schedule.RegisterValidators(validate, translator)

	usrSvc := user.NewService(repos.users)
	schedSvc := schedule.NewService(logger, repos.lectures, repos.timetables, repos.venues, validate)
	attSvc := attendance.NewService(logger, repos.instances, repos.lectures)
	regEng := registration.NewEngine(logger, repos.semesters, repos.units, repos.regs, repos.users, mailSvc)
	reportSvc := report.NewService(
		logger, repos.lectures, repos.timetables, repos.instances, repos.regs, repos.units, repos.users)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         usrSvc,
			ScheduleSvc:     schedSvc,
			AttendanceSvc:   attSvc,
			RegistrationEng: regEng,
			ReportSvc:       reportSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)

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

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpRepos(conf *core.Config) (repositories, func(), error) {
	if conf.Database.InMemory {
		db := inmemdb.Open()
		return repositories{
			users:      inmemdb.NewUserRepository(db),
			lectures:   inmemdb.NewLectureRepository(db),
			timetables: inmemdb.NewTimetableRepository(db),
			venues:     inmemdb.NewVenueRepository(db),
			courses:    inmemdb.NewCourseRepository(db),
			semesters:  inmemdb.NewSemesterRepository(db),
			units:      inmemdb.NewUnitRepository(db),
			regs:       inmemdb.NewRegistrationRepository(db),
			instances:  inmemdb.NewInstanceRepository(db),
		}, func() {}, nil
	}

	db, err := setUpDB(conf)
	if err != nil {
		return repositories{}, nil, err
	}

	xdb := sqlx.NewDb(db, conf.Database.Engine)
	return repositories{
		users:      sqlxrepos.NewUserRepository(xdb),
		lectures:   sqlxrepos.NewLectureRepository(xdb),
		timetables: sqlxrepos.NewTimetableRepository(xdb),
		venues:     sqlxrepos.NewVenueRepository(xdb),
		courses:    sqlxrepos.NewCourseRepository(xdb),
		semesters:  sqlxrepos.NewSemesterRepository(xdb),
		units:      sqlxrepos.NewUnitRepository(xdb),
		regs:       sqlxrepos.NewRegistrationRepository(xdb),
		instances:  sqlxrepos.NewInstanceRepository(xdb),
	}, func() { _ = db.Close() }, nil
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
