package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/schoolhub/feepay/pkg/config"
)

type stubSender struct {
	sent []*gomail.Message
	err  error
}

func (s *stubSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

func TestNew_DisabledWithoutHost(t *testing.T) {
	m := New(&config.Config{})
	require.False(t, m.Enabled())
	require.ErrorIs(t, m.Send(&Message{To: "a@example.com"}), ErrDisabled)
}

func TestNew_FromFallsBackToUsername(t *testing.T) {
	cfg := &config.Config{}
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Port = 587
	cfg.SMTP.Username = "bursar@example.com"

	m := New(cfg)
	require.True(t, m.Enabled())
	require.Equal(t, "bursar@example.com", m.from)
}

func TestSend_WritesHeadersAndAttachment(t *testing.T) {
	s := &stubSender{}
	m := &Mailer{dialer: s, from: "bursar@example.com"}

	err := m.Send(&Message{
		To:          "parent@example.com",
		Subject:     "Receipt RCP-1",
		HTMLBody:    "<p>thanks</p>",
		Attachments: []Attachment{{Name: "RCP-1.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")}},
	})
	require.NoError(t, err)
	require.Len(t, s.sent, 1)
	require.Equal(t, []string{"parent@example.com"}, s.sent[0].GetHeader("To"))
	require.Equal(t, []string{"Receipt RCP-1"}, s.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = s.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `filename="RCP-1.pdf"`)

	s.err = errors.New("535 auth failed")
	require.ErrorContains(t, m.Send(&Message{To: "x@example.com"}), "535 auth failed")
}
