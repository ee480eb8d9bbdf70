package clog

import (
	"os"

	"github.com/apex/log"
)

var clogger = NewContextLogger(os.Stdout)

// SetHandler installs h for both the context logger and apex/log's default
// logger, so packages logging through either end up in the same place.
func SetHandler(h log.Handler) {
	clogger.SetHandler(h)
	log.SetHandler(h)
}

func SetLevel(level log.Level) {
	clogger.SetLevel(level)
	log.SetLevel(level)
}

func SetLevelFromString(s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	SetLevel(level)
	return nil
}

func UsingCtx(ctx string) *log.Entry {
	return clogger.UsingCtx(ctx)
}

func Global() *log.Entry {
	return clogger.Global()
}

func Fatal(ctx string, format string, args ...interface{}) {
	clogger.Fatal(ctx, format, args...)
}
