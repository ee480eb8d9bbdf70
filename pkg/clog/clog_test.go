package clog

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(nopCloser{&buf})
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	require.NoError(t, h.HandleLog(&log.Entry{
		Level:     log.WarnLevel,
		Message:   "endpoint not active",
		Timestamp: ts,
		Fields:    log.Fields{"fd_id": "1203231", "ctx": "transfer"},
	}))

	assert.Equal(t, " WARN 2026-03-04 05:06:07 endpoint not active       ctx=transfer fd_id=1203231\n", buf.String())
}

func TestNotifyHandler(t *testing.T) {
	var buf bytes.Buffer
	rec := &notify.Recorder{}
	h := NewNotifyHandler(NewHandler(nopCloser{&buf}), rec)
	logger := &log.Logger{Handler: h, Level: log.InfoLevel}

	logger.Info("Sync requested.")
	logger.Warn("Lock is stale")
	logger.WithField("fd_id", "1").Error("Staging request failed.")
	require.Equal(t, 1, rec.Count())
	assert.Equal(t, "error", rec.Notifications[0].Severity)
	assert.Contains(t, rec.Notifications[0].Message, "Staging request failed.")

	h.Mute(true)
	logger.Error("muted")
	assert.Equal(t, 1, rec.Count())
	assert.Contains(t, buf.String(), "muted")
}

func TestNotifyHandler_NotifierFailureIsNotEscalated(t *testing.T) {
	var out, errs bytes.Buffer
	rec := &notify.Recorder{Err: errors.New("relay down")}
	h := NewNotifyHandler(NewHandler(nopCloser{&out}), rec)
	h.Errors = &errs
	logger := &log.Logger{Handler: h, Level: log.InfoLevel}

	logger.Error("catalog unreachable")
	assert.Contains(t, out.String(), "catalog unreachable")
	assert.Contains(t, errs.String(), "relay down")
}

func TestContextLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	rec := &notify.Recorder{}
	l := NewContextLogger(nopCloser{&buf})
	l.SetHandler(NewNotifyHandler(NewHandler(nopCloser{&buf}), rec))

	l.Fatal("stage", "staging service temporarily unavailable")
	assert.Contains(t, buf.String(), "FATAL")
	assert.Contains(t, buf.String(), "ctx=stage")
	require.Equal(t, 1, rec.Count())
	assert.Equal(t, "fatal", rec.Notifications[0].Severity)
}
