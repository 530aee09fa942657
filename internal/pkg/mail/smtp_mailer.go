package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// Sender delivers one HTML mail.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends emails via SMTP
type SMTPMailer struct {
	cfg  Config
	log  zerolog.Logger
	send sendFunc
}

func NewSMTPMailer(cfg Config, log zerolog.Logger) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = "no-reply@localhost"
	}
	return &SMTPMailer{cfg: cfg, log: log.With().Str("component", "mail").Logger(), send: smtp.SendMail}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	var auth smtp.Auth
	if m.cfg.User != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", m.cfg.From, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			htmlBody,
	)
	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.log.Error().Err(err).Str("addr", addr).Msg("smtp send failed")
		return fmt.Errorf("send mail: %w", err)
	}
	m.log.Info().Str("addr", addr).Msg("mail sent")
	return nil
}

// LogMailer writes mails to the log. Used when no SMTP host is configured.
type LogMailer struct {
	Log zerolog.Logger
}

func (m LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.Log.Info().Str("to", to).Str("subject", subject).Str("body", htmlBody).Msg("mail not sent, smtp disabled")
	return nil
}

var activationTmpl = template.Must(template.New("activation").Parse(
	`<p>Hello {{.Name}},</p>
<p>please confirm your email address for ScrapMarket:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>`))

// ActivationMail renders the account confirmation mail.
func ActivationMail(baseURL, name, token string) (subject, body string, err error) {
	var buf bytes.Buffer
	err = activationTmpl.Execute(&buf, map[string]string{
		"Name": name,
		"Link": baseURL + "/activate?token=" + token,
	})
	if err != nil {
		return "", "", err
	}
	return "Confirm your ScrapMarket account", buf.String(), nil
}
