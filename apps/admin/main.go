package main

import (
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	logsvc "github.com/trezcool/kazi/services/logger"
	"github.com/trezcool/kazi/storage/database"
	sqlxrepos "github.com/trezcool/kazi/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	std := logsvc.NewStdLogger(conf)
	rollbarLogger := logsvc.NewRollbarLogger(std, conf)
	rollbarLogger.Enable(false) // operator errors are printed, not reported
	logger = rollbarLogger

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	member.InitValidators(validate, translator)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		memberSvc:  member.NewService(sqlxrepos.NewMemberRepository(db), logger),
		validate:   validate,
		translator: translator,
	}
	err = cli.run(os.Args)
	if cErr := db.Close(); cErr != nil {
		logger.Error("closing database", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error("error: "+err.Error(), err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
