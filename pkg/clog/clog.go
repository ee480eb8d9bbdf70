package clog

import (
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
)

// ContextLogger hands out entries tagged with the invocation they belong to,
// eg "stage" or "publish".
type ContextLogger struct {
	GlobalLogger *log.Logger
}

const GlobalLoggerCtx = "global"

func NewContextLogger(w io.WriteCloser) *ContextLogger {
	return &ContextLogger{
		GlobalLogger: &log.Logger{
			Handler: NewHandler(w),
			Level:   log.InfoLevel,
		},
	}
}

func (l *ContextLogger) SetHandler(h log.Handler) {
	l.GlobalLogger.Handler = h
}

func (l *ContextLogger) SetLevel(level log.Level) {
	l.GlobalLogger.Level = level
}

func (l *ContextLogger) SetLevelFromString(s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	l.SetLevel(level)

	return nil
}

func (l *ContextLogger) UsingCtx(ctx string) *log.Entry {
	return l.GlobalLogger.WithField("ctx", ctx)
}

func (l *ContextLogger) Global() *log.Entry {
	return l.UsingCtx(GlobalLoggerCtx)
}

// Fatal writes a FATAL entry without exiting. apex/log's own Fatal calls
// os.Exit, which would skip releasing the run lock.
func (l *ContextLogger) Fatal(ctx string, format string, args ...interface{}) {
	if l.GlobalLogger.Level > log.FatalLevel {
		return
	}

	e := &log.Entry{
		Logger:    l.GlobalLogger,
		Fields:    log.Fields{"ctx": ctx},
		Level:     log.FatalLevel,
		Timestamp: time.Now(),
		Message:   fmt.Sprintf(format, args...),
	}

	_ = l.GlobalLogger.Handler.HandleLog(e)
}
