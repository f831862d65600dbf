package mailer

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/fx"
	"gopkg.in/gomail.v2"

	"github.com/schoolhub/feepay/pkg/config"
)

var ErrDisabled = errors.New("mailer: smtp not configured")

type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends mail through one SMTP server.
type Mailer struct {
	dialer sender
	from   string
}

func New(cfg *config.Config) *Mailer {
	m := &Mailer{from: cfg.SMTP.From}
	if m.from == "" {
		m.from = cfg.SMTP.Username
	}
	if cfg.SMTP.Host == "" || m.from == "" {
		return m
	}
	m.dialer = gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return m
}

func (m *Mailer) Enabled() bool { return m != nil && m.dialer != nil }

func (m *Mailer) build(msg *Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)
	for _, a := range msg.Attachments {
		content := a.Content
		settings := []gomail.FileSetting{gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		})}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		gm.Attach(a.Name, settings...)
	}
	return gm
}

func (m *Mailer) Send(msg *Message) error {
	if !m.Enabled() {
		return ErrDisabled
	}
	if err := m.dialer.DialAndSend(m.build(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)
