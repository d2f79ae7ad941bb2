// Package mailer renders and delivers outgoing mail.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"

	"files-manager/backend/common"

	"go.uber.org/zap"
)

// Message is a rendered mail ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages. Errors are transient from the caller's point of
// view: the job that asked for the mail may be retried.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Sender   string
	Enabled  bool
}

// SMTPMailer sends mail through an SMTP relay with PLAIN auth. When disabled
// it only logs what would have been sent.
type SMTPMailer struct {
	config   SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Sender == "" {
		cfg.Sender = cfg.User
	}
	return &SMTPMailer{config: cfg, sendMail: smtp.SendMail}
}

// FromConfig builds the mailer described by the MAIL_* and SMTP_* keys.
func FromConfig(cfg *common.Config) *SMTPMailer {
	return NewSMTPMailer(SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		Sender:   cfg.MailSender,
		Enabled:  cfg.MailEnabled,
	})
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.config.Enabled {
		common.SysLog("mail disabled, not sending",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return nil
	}
	if m.config.Host == "" || m.config.User == "" || m.config.Password == "" {
		return errors.New("smtp not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	if err := m.sendMail(addr, auth, m.config.Sender, []string{msg.To}, m.build(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	common.SysLog("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (m *SMTPMailer) build(msg Message) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		m.config.Sender, msg.To, msg.Subject, msg.HTML,
	))
}

const welcomeSubject = "Welcome to Files Manager"

var welcomeTemplate = template.Must(template.New("welcome").Parse(
	`<div><h3>Hello {{.Name}},</h3>Welcome to Files Manager, a file management API. ` +
		`You can now upload files, organise them in folders and share them publicly.</div>`,
))

// Welcome renders the signup greeting for the given address. name falls back
// to the address when empty.
func Welcome(to, name string) (Message, error) {
	if name == "" {
		name = to
	}
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, struct{ Name string }{name}); err != nil {
		return Message{}, fmt.Errorf("render welcome mail: %w", err)
	}
	return Message{To: to, Subject: welcomeSubject, HTML: buf.String()}, nil
}
