package dig_container

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/rating"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/track"
	emailsvc "github.com/trezcool/kazi/services/email"
	logsvc "github.com/trezcool/kazi/services/logger"
	notifysvc "github.com/trezcool/kazi/services/notify"
	"github.com/trezcool/kazi/storage/database"
	inmemdb "github.com/trezcool/kazi/storage/database/inmem"
	sqlxrepos "github.com/trezcool/kazi/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// CloseDB releases the storage backing the repositories.
type CloseDB func() error

type Storage struct {
	dig.Out

	Members       member.Repository
	Tracks        track.Repository
	Announcements track.AnnouncementRepository
	Close         CloseDB
}

func newLogger(conf *core.Config) core.Logger {
	std := logsvc.NewStdLogger(conf)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	std := logsvc.NewStdLogger(conf)
	std.SetReportCaller(true)
	std.AddHook(componentHook("db"))
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// componentHook tags every entry with the component that logged it.
type componentHook string

func (h componentHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h componentHook) Fire(entry *logrus.Entry) error {
	entry.Data["component"] = string(h)
	return nil
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.InMemory {
		db := inmemdb.Open()
		return Storage{
			Members:       inmemdb.NewMemberRepository(db),
			Tracks:        inmemdb.NewTrackRepository(db),
			Announcements: inmemdb.NewAnnouncementRepository(db),
			Close:         func() error { return nil },
		}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(context.Background(), conf); err != nil {
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
	return Storage{
		Members:       sqlxrepos.NewMemberRepository(db),
		Tracks:        sqlxrepos.NewTrackRepository(db),
		Announcements: sqlxrepos.NewAnnouncementRepository(db),
		Close:         db.Close,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newNotifier delivers every notification to the member's inbox, then by email.
func newNotifier(repo member.Repository, mailSvc core.EmailService) member.Notifier {
	return notifysvc.Chain{
		notifysvc.NewInboxNotifier(repo),
		notifysvc.NewMailNotifier(mailSvc),
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(newNotifier))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(member.NewService))
	must(c.Provide(task.NewService))
	must(c.Provide(rating.NewService))
	must(c.Provide(track.NewService))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
