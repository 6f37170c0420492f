package logsvc

import (
	"fmt"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/user"
)

// RollbarLogger prints to a std logger and reports to Rollbar.
// Args may hold an error, a map[string]interface{} of extras, and the current user.User.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(!conf.Debug && conf.RollbarToken != "")
	return &RollbarLogger{std: std}
}

// Close waits for queued reports to be sent.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}

func (l *RollbarLogger) log(level, msg string, args []interface{}) {
	report := make([]interface{}, 0, len(args)+1)
	report = append(report, msg)
	var person *user.User
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok {
			if person == nil {
				person = &usr
			}
			continue
		}
		report = append(report, arg)
	}
	if person != nil {
		rollbar.SetPerson(person.ID, person.Username, person.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, report...)

	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range report[1:] {
		l.std.Printf("%+v", arg)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.DEBUG, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.INFO, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.WARN, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.ERR, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(fmt.Sprintf("fatal: %s", msg))
}
