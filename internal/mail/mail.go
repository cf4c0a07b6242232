package mail

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
)

// Sender delivers notification mail. A false result means delivery failed and
// the caller should surface a recoverable error, never crash.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) bool
}

// SMTPSender implements Sender over SMTP with STARTTLS and PLAIN auth.
type SMTPSender struct {
	addr     string
	username string
	password string
	from     string
	logger   *log.Logger
}

// Options configures an SMTPSender.
type Options struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	Logger   *log.Logger
}

// NewSMTPSender constructs an SMTP-backed sender.
func NewSMTPSender(opts Options) *SMTPSender {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(opts.Server, fmt.Sprintf("%d", opts.Port)),
		username: opts.Username,
		password: opts.Password,
		from:     opts.From,
		logger:   logger,
	}
}

// Send delivers a single HTML message. Failures are logged with detail and
// reported as false.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) bool {
	if err := ctx.Err(); err != nil {
		s.logger.Printf("mail: send aborted: %v", err)
		return false
	}

	msg := buildMessage(s.from, to, subject, html)

	var auth smtp.Auth
	if s.username != "" {
		host, _, _ := net.SplitHostPort(s.addr)
		auth = smtp.PlainAuth("", s.username, s.password, host)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, msg); err != nil {
		s.logger.Printf("mail: send to %s failed: %v", to, err)
		return false
	}
	return true
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Disabled is a Sender for deployments without SMTP configuration; every send
// reports failure so callers surface the dependency error.
type Disabled struct {
	Logger *log.Logger
}

// Send always reports failure.
func (d Disabled) Send(ctx context.Context, to, subject, html string) bool {
	if d.Logger != nil {
		d.Logger.Printf("mail: delivery disabled, dropping message to %s", to)
	}
	return false
}
