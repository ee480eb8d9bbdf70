package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/notify"
)

// NotifyHandler passes every entry to the wrapped handler and additionally
// sends error and fatal entries to a notifier. A failed notification is
// reported on Errors and otherwise ignored.
type NotifyHandler struct {
	mu       sync.Mutex
	next     log.Handler
	notifier notify.Notifier
	muted    bool
	timeout  time.Duration
	Errors   io.Writer
}

func NewNotifyHandler(next log.Handler, notifier notify.Notifier) *NotifyHandler {
	return &NotifyHandler{
		next:     next,
		notifier: notifier,
		timeout:  10 * time.Second,
		Errors:   os.Stderr,
	}
}

// Mute turns notifications off, as --no-mail does.
func (h *NotifyHandler) Mute(muted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.muted = muted
}

func (h *NotifyHandler) HandleLog(e *log.Entry) error {
	if err := h.next.HandleLog(e); err != nil {
		return err
	}

	h.mu.Lock()
	muted := h.muted
	h.mu.Unlock()

	if muted || h.notifier == nil || e.Level < log.ErrorLevel {
		return nil
	}

	var b bytes.Buffer
	format(&b, e)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	severity := strings.ToLower(levelName(e.Level))
	if err := h.notifier.Notify(ctx, severity, b.String()); err != nil {
		_, _ = fmt.Fprintf(h.Errors, "notification failed: %s\n", err)
	}

	return nil
}
