// Package logger provides the application logger. Messages always go to the
// standard logger; when a Rollbar token is configured they are also reported
// to Rollbar.
package logger

import (
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
)

// Logger is the logging contract used across the service
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the user a log entry relates to
type Person struct {
	ID    string
	Name  string
	Email string
}

// Options configures the Rollbar reporter
type Options struct {
	Token       string
	Environment string
	ServerHost  string
	CodeVersion string
}

// RollbarLogger writes to a std logger and forwards entries to Rollbar
type RollbarLogger struct {
	std     *log.Logger
	enabled bool
}

var _ Logger = (*RollbarLogger)(nil)

// New creates a logger. Rollbar forwarding is disabled when opts.Token is empty.
func New(std *log.Logger, opts Options) *RollbarLogger {
	if std == nil {
		std = log.New(os.Stdout, "studyhive ", log.LstdFlags|log.Lmicroseconds)
	}
	enabled := opts.Token != ""
	if enabled {
		rollbar.SetToken(opts.Token)
		rollbar.SetEnvironment(opts.Environment)
		rollbar.SetServerHost(opts.ServerHost)
		rollbar.SetCodeVersion(opts.CodeVersion)
	}
	rollbar.SetEnabled(enabled)
	return &RollbarLogger{std: std, enabled: enabled}
}

// Close flushes pending Rollbar reports
func (l *RollbarLogger) Close() {
	if l.enabled {
		rollbar.Close()
	}
}

// expected args: error, map[string]interface{}, Person
func (l *RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var personSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if p, ok := arg.(Person); ok {
			if !personSet {
				rollbar.SetPerson(p.ID, p.Name, p.Email)
				personSet = true
			}
			continue
		}
		newArgs = append(newArgs, arg)
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l *RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", level, msg)
	for _, arg := range args {
		l.std.Printf("  %+v", arg)
	}
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	if l.enabled {
		rollbar.Info(l.prepare(msg, args)...)
	}
	l.print("INFO", msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	if l.enabled {
		rollbar.Warning(l.prepare(msg, args)...)
	}
	l.print("WARN", msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	if l.enabled {
		rollbar.Error(l.prepare(msg, args)...)
	}
	l.print("ERROR", msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	if l.enabled {
		rollbar.Critical(l.prepare(msg, args)...)
		rollbar.Close()
	}
	l.print("FATAL", msg, args)
	os.Exit(1)
}
