package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"
)

// Sender delivers one HTML email. A nil error means the provider accepted it.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
}

// SMTPSender sends mail through an SMTP relay, upgrading to TLS when offered.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSender returns an SMTP sender, or a MockSender when no host is configured.
func NewSender(cfg SMTPConfig) Sender {
	if cfg.Host == "" {
		logrus.Warn("SMTP host not configured. Email delivery will be mocked.")
		return &MockSender{}
	}
	return &SMTPSender{cfg: cfg}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := BuildMessage(s.cfg.From, to, subject, htmlBody, time.Now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("failed to send email: starttls: %w", err)
		}
	}
	if s.cfg.Password != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("failed to send email: auth: %w", err)
			}
		}
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return c.Quit()
}

// BuildMessage renders a single-part HTML message with RFC 5322 headers.
func BuildMessage(from, to, subject, htmlBody string, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if _, err := w.Write([]byte(htmlBody)); err != nil {
		return nil, fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}

// MockSender logs emails instead of sending them. Used for development.
type MockSender struct{}

// Send implements Sender.
func (m *MockSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	preview := htmlBody
	if len(preview) > 100 {
		preview = preview[:100]
	}
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"preview": preview,
	}).Info("[MOCK EMAIL] email not sent")
	return nil
}
