package logsvc

import (
	"io"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/lumberjack.v2"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

// NewStdLogger returns the local logger: text to stderr, plus a rotated file when conf.Log.File is set.
func NewStdLogger(conf *core.Config) *logrus.Logger {
	std := logrus.New()
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	std.SetLevel(logrus.InfoLevel)
	if conf.Debug {
		std.SetLevel(logrus.DebugLevel)
	}

	var out io.Writer = os.Stderr
	if conf.Log.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   conf.Log.File,
			MaxSize:    conf.Log.MaxSizeMB,
			MaxBackups: conf.Log.MaxBackups,
			MaxAge:     conf.Log.MaxAgeDays,
		})
	}
	std.SetOutput(out)
	return std
}

// RollbarLogger reports to rollbar and mirrors every entry to a local logrus logger.
type RollbarLogger struct {
	std *logrus.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *logrus.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// split separates rollbar args from local log fields.
// expected fmt: msg | error, map[string]interface{}, member.Member
func (l RollbarLogger) split(msg string, args []interface{}) ([]interface{}, logrus.Fields) {
	var personSet bool
	fields := logrus.Fields{}
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case member.Member:
			if !personSet { // only set one member
				rollbar.SetPerson(a.ID, a.Name, a.Email)
				fields["member"] = a.ID
				personSet = true
			}
			continue
		case error:
			fields[logrus.ErrorKey] = a
		case map[string]interface{}:
			for k, v := range a {
				fields[k] = v
			}
		}
		rbArgs = append(rbArgs, arg)
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	return rbArgs, fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, fields := l.split(msg, args)
	rollbar.Debug(rbArgs...)
	l.std.WithFields(fields).Debug(msg)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, fields := l.split(msg, args)
	rollbar.Info(rbArgs...)
	l.std.WithFields(fields).Info(msg)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, fields := l.split(msg, args)
	rollbar.Warning(rbArgs...)
	l.std.WithFields(fields).Warn(msg)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, fields := l.split(msg, args)
	rollbar.Error(rbArgs...)
	l.std.WithFields(fields).Error(msg)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, fields := l.split(msg, args)
	rollbar.Critical(rbArgs...)
	rollbar.Wait()
	l.std.WithFields(fields).Fatal(msg)
}
