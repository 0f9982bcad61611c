// Package notification emails exported bill reports.
package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/report"
)

// ErrNotConfigured is returned when no email provider is set up.
var ErrNotConfigured = errors.New("notification: email not configured")

// Config selects and configures the email provider.
type Config struct {
	Provider    string // "sendgrid", "smtp" or "gmail"
	FromName    string
	FromAddress string
	APIKey      string

	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string // "ssl", "tls" or "" for plain
}

// Message is one outgoing report email.
type Message struct {
	To       string
	Subject  string
	Body     string
	FileName string
}

type Service struct {
	cfg Config
	now func() time.Time
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s.cfg.Provider != "" && s.cfg.FromAddress != ""
}

// BuildReport renders the text report for a session's bill into a message.
func (s *Service) BuildReport(to string, snap billing.BillSnapshot, entries []billing.ApplianceEntry) (Message, error) {
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return Message{}, &billing.ValidationError{Field: "to", Value: to}
	}
	now := s.now()
	var buf bytes.Buffer
	if err := report.WriteText(&buf, snap, entries, report.Options{Now: now}); err != nil {
		return Message{}, err
	}
	return Message{
		To:       addr.Address,
		Subject:  fmt.Sprintf("Electricity bill report %s", now.Format("2006-01-02")),
		Body:     buf.String(),
		FileName: report.FileName(now),
	}, nil
}

// SendReport builds and sends the report email.
func (s *Service) SendReport(ctx context.Context, to string, snap billing.BillSnapshot, entries []billing.ApplianceEntry) error {
	msg, err := s.BuildReport(to, snap, entries)
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

// Send delivers msg through the configured provider.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	var err error
	switch s.cfg.Provider {
	case "smtp", "gmail":
		err = s.sendSMTP(msg)
	case "sendgrid":
		err = s.sendSendgrid(ctx, msg)
	default:
		return fmt.Errorf("unknown provider: %s", s.cfg.Provider)
	}
	if err != nil {
		return fmt.Errorf("send via %s: %w", s.cfg.Provider, err)
	}
	slog.Info("notification: report sent", "provider", s.cfg.Provider, "to", msg.To)
	return nil
}

func (s *Service) sendgridMessage(msg Message) *sgmail.SGMailV3 {
	from := sgmail.NewEmail(s.cfg.FromName, s.cfg.FromAddress)
	m := sgmail.NewSingleEmailPlainText(from, msg.Subject, sgmail.NewEmail("", msg.To), msg.Body)

	a := sgmail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString([]byte(msg.Body)))
	a.SetType("text/plain")
	a.SetFilename(msg.FileName)
	a.SetDisposition("attachment")
	m.AddAttachment(a)
	return m
}

func (s *Service) sendSendgrid(ctx context.Context, msg Message) error {
	client := sendgrid.NewSendClient(s.cfg.APIKey)
	resp, err := client.SendWithContext(ctx, s.sendgridMessage(msg))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *Service) smtpMessage(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", (&mail.Address{Name: s.cfg.FromName, Address: s.cfg.FromAddress}).String())
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&b, "Content-Disposition: inline; filename=%q\r\n", msg.FileName)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func (s *Service) sendSMTP(msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	body := s.smtpMessage(msg)

	if s.cfg.Encryption == "" || s.cfg.Encryption == "none" {
		var auth smtp.Auth
		if s.cfg.Username != "" {
			auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		}
		return smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{msg.To}, body)
	}

	var c *smtp.Client
	switch s.cfg.Encryption {
	case "ssl":
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
		if err != nil {
			return err
		}
		c, err = smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			conn.Close()
			return err
		}
	case "tls":
		var err error
		c, err = smtp.Dial(addr)
		if err != nil {
			return err
		}
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				c.Close()
				return err
			}
		}
	default:
		return fmt.Errorf("unknown smtp encryption %q", s.cfg.Encryption)
	}
	defer c.Quit()

	if s.cfg.Username != "" && s.cfg.Password != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(s.cfg.FromAddress); err != nil {
		return err
	}
	if err := c.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return w.Close()
}
