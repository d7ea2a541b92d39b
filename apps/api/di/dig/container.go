// Package digcontainer wires the API dependencies with go.uber.org/dig.
package digcontainer

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
	"github.com/trezcool/ratiba/core/staff"
	"github.com/trezcool/ratiba/core/timetable"
	emailsvc "github.com/trezcool/ratiba/services/email"
	logsvc "github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/database"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	sqlxrepos "github.com/trezcool/ratiba/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In
	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	StaffSvc    staff.ServiceInterface
	SectionSvc  section.ServiceInterface
	TimeSlotSvc timetable.ServiceInterface
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB) {
	setUp := func() (*sqlx.DB, error) {
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

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

// newExecutor exposes the database to the repositories.
func newExecutor(db *sqlx.DB) core.DBExecutor {
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	section.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)
	timetable.InitValidators(validate, translator)
	return validate
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Deps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		StaffSvc:    p.StaffSvc,
		SectionSvc:  p.SectionSvc,
		TimeSlotSvc: p.TimeSlotSvc,
	})
}

// New returns a new dependency injection dig.Container.
// With inMemory, the repositories keep their records in memory instead of PostgreSQL.
func New(inMemory bool) *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newEmailService))

	if inMemory {
		must(c.Provide(inmemdb.NewDB))
		must(c.Provide(func(db *inmemdb.DB) core.Transactor { return db }))
		must(c.Provide(inmemdb.NewStaffRepository, dig.As(new(staff.Repository))))
		must(c.Provide(inmemdb.NewSectionRepository, dig.As(new(section.Repository))))
		must(c.Provide(inmemdb.NewTimeSlotRepository, dig.As(new(timetable.Repository))))
	} else {
		must(c.Provide(newDB))
		must(c.Provide(newExecutor))
		must(c.Provide(sqlxrepos.NewTransactor, dig.As(new(core.Transactor))))
		must(c.Provide(sqlxrepos.NewStaffRepository, dig.As(new(staff.Repository))))
		must(c.Provide(sqlxrepos.NewSectionRepository, dig.As(new(section.Repository))))
		must(c.Provide(sqlxrepos.NewTimeSlotRepository, dig.As(new(timetable.Repository))))
	}

	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(staff.NewService, dig.As(new(staff.ServiceInterface))))
	must(c.Provide(section.NewService, dig.As(new(section.ServiceInterface))))
	must(c.Provide(timetable.NewService, dig.As(new(timetable.ServiceInterface))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
