// Package notify delivers operator alerts. Delivery is best effort: callers log
// a failed notification and carry on.
package notify

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	defaultSMTPPort = 25
	sendTimeout     = 10 * time.Second
)

type Notifier interface {
	Notify(ctx context.Context, severity, message string) error
}

type Noop struct{}

func (Noop) Notify(_ context.Context, _, _ string) error { return nil }

type SMTPConfig struct {
	Host    string `mapstructure:"smtp_host"`
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
	Subject string `mapstructure:"subject"`
}

// SMTPNotifier mails each alert through an unauthenticated relay.
type SMTPNotifier struct {
	cfg  SMTPConfig
	to   []string
	host string
	port int
	send func(ctx context.Context, m *mail.Msg) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	var to []string
	for _, addr := range strings.Split(cfg.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}

	if cfg.Subject == "" {
		cfg.Subject = "seqsync"
	}

	n := &SMTPNotifier{cfg: cfg, to: to, host: cfg.Host, port: defaultSMTPPort}
	if host, port, err := net.SplitHostPort(cfg.Host); err == nil {
		if p, err := strconv.Atoi(port); err == nil {
			n.host, n.port = host, p
		}
	}

	n.send = n.dialAndSend
	return n
}

func (n *SMTPNotifier) Notify(ctx context.Context, severity, message string) error {
	if n.host == "" || len(n.to) == 0 {
		return fmt.Errorf("smtp notifier is not configured")
	}

	m, err := n.message(severity, message)
	if err != nil {
		return err
	}

	return n.send(ctx, m)
}

func (n *SMTPNotifier) message(severity, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", n.cfg.From, err)
	}

	if err := m.To(n.to...); err != nil {
		return nil, fmt.Errorf("smtp to %q: %w", n.cfg.To, err)
	}

	m.Subject(fmt.Sprintf("[%s] %s", strings.ToUpper(severity), n.cfg.Subject))
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, m *mail.Msg) error {
	c, err := mail.NewClient(n.host,
		mail.WithPort(n.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return err
	}

	return c.DialAndSendWithContext(ctx, m)
}

type Notification struct {
	Severity string
	Message  string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu            sync.Mutex
	Err           error
	Notifications []Notification
}

func (r *Recorder) Notify(_ context.Context, severity, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = append(r.Notifications, Notification{Severity: severity, Message: message})
	return r.Err
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Notifications)
}
