package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/secrets"
)

// Notifier delivers the rendered digest over authenticated SMTP as a
// multipart/alternative message (plain text + HTML).
type Notifier struct {
	server     string
	port       int
	recipients []string
	creds      *secrets.Secrets
	send       sendFunc
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires SMTP endpoint configuration with the injected
// credentials. Credentials are held by reference and never copied out.
func NewNotifier(cfg config.EmailConfig, creds *secrets.Secrets) *Notifier {
	return &Notifier{
		server:     cfg.SMTPServer,
		port:       cfg.SMTPPort,
		recipients: cfg.Recipients,
		creds:      creds,
		send:       smtp.SendMail,
	}
}

// Deliver submits the digest email. The subject carries the report's date
// key. Transport failures surface as DeliveryError so the runner can treat
// them as non-fatal.
func (n *Notifier) Deliver(ctx context.Context, report domain.Report, markdown, plain string) (domain.DeliveryResult, error) {
	if n.creds == nil || n.creds.EmailUsername() == "" {
		return domain.DeliveryResult{}, &domain.DeliveryError{Err: fmt.Errorf("email notifier misconfigured")}
	}
	if len(n.recipients) == 0 {
		return domain.DeliveryResult{}, &domain.DeliveryError{Err: fmt.Errorf("no recipients configured")}
	}
	if err := ctx.Err(); err != nil {
		return domain.DeliveryResult{}, &domain.DeliveryError{Err: err}
	}

	from := n.creds.EmailUsername()
	subject := fmt.Sprintf("AI Industry Daily - %s", report.Date)
	msg := buildMessage(from, n.recipients, subject, plain, markdownToHTML(markdown))

	addr := fmt.Sprintf("%s:%d", n.server, n.port)
	auth := smtp.PlainAuth("", from, n.creds.EmailPassword(), n.server)

	if err := n.send(addr, auth, from, n.recipients, msg); err != nil {
		return domain.DeliveryResult{}, &domain.DeliveryError{Err: fmt.Errorf("smtp send: %w", err)}
	}

	return domain.DeliveryResult{
		Recipients:  n.recipients,
		DeliveredAt: time.Now().UTC(),
	}, nil
}

func buildMessage(from string, to []string, subject, plain, html string) []byte {
	const boundary = "digest-boundary-1"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(plain)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}
