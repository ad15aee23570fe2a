package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Template names shipped with the binary.
const (
	TemplateConfirmEmail  = "confirm_email.html"
	TemplateResetPassword = "reset_password.html"
)

// Message is a rendered-on-send transactional email.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     TemplateData
}

// TemplateData feeds the html templates.
type TemplateData struct {
	Name      string
	ActionURL string
	ValidFor  string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render executes the message template into an html body.
func Render(msg Message) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, msg.Template, msg.Data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender relays mail through an SMTP server with PLAIN auth.
type SMTPSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewSMTPSender builds a sender from config. Auth is skipped when no username is set.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from:     cfg.DefaultFrom,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Render(msg)
	if err != nil {
		return err
	}
	raw := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		s.from, msg.To, msg.Subject, body,
	)
	if err := s.sendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(raw)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender writes messages to the structured log instead of sending them.
// Used when no SMTP relay is configured.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	body, err := Render(msg)
	if err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"mail_to":      msg.To,
			"mail_subject": msg.Subject,
			"mail_body":    body,
		})
		s.logg.Info(ctx, "mail.logged")
	}
	return nil
}

// New returns an SMTP sender when configured, otherwise a log sender.
func New(cfg config.MailConfig, logg *logger.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return NewLogSender(logg)
}
