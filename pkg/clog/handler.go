package clog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
)

// Handler writes entries as "LEVEL YYYY-MM-DD HH:MM:SS message k=v ..." with
// fields sorted by name.
type Handler struct {
	mu     sync.Mutex
	Writer io.WriteCloser
}

var levelToStrings = [...]string{
	log.DebugLevel: "DEBUG",
	log.InfoLevel:  "INFO",
	log.WarnLevel:  "WARN",
	log.ErrorLevel: "ERROR",
	log.FatalLevel: "FATAL",
}

type field struct {
	Name  string
	Value interface{}
}

type byName []field

func (a byName) Len() int           { return len(a) }
func (a byName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byName) Less(i, j int) bool { return a[i].Name < a[j].Name }

func NewHandler(w io.WriteCloser) *Handler {
	return &Handler{Writer: w}
}

func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.Writer == nil || h.Writer == os.Stdout || h.Writer == os.Stderr {
		return
	}

	_ = h.Writer.Close()
}

func (h *Handler) HandleLog(e *log.Entry) error {
	var b bytes.Buffer
	format(&b, e)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, _ = fmt.Fprintln(h.Writer, b.String())

	return nil
}

func format(b *bytes.Buffer, e *log.Entry) {
	fields := make([]field, 0, len(e.Fields))
	for k, v := range e.Fields {
		fields = append(fields, field{k, v})
	}

	sort.Sort(byName(fields))

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, _ = fmt.Fprintf(b, "%5s %s %-25s", levelName(e.Level), ts.Format(time.DateTime), e.Message)

	for _, f := range fields {
		_, _ = fmt.Fprintf(b, " %s=%v", f.Name, f.Value)
	}
}

func levelName(level log.Level) string {
	if int(level) < 0 || int(level) >= len(levelToStrings) {
		return "INFO"
	}

	return levelToStrings[level]
}
