package logsvc

import (
	"log"

	"github.com/tutorlink/backend/core"
)

// StdLogger writes to the standard logger only; used in DEV and tests
// where Rollbar reporting is unwanted.
type StdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

func (l StdLogger) Info(msg string, args ...interface{}) {
	l.std.Println("INFO: " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l StdLogger) Error(msg string, err error, args ...interface{}) {
	l.std.Printf("ERROR: %s: %+v\n", msg, err)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}
