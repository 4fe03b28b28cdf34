package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cumple/internal/config"
)

// capturedMail records one sendMail invocation.
type capturedMail struct {
	addr string
	from string
	to   []string
	msg  []byte
}

// newTestEmailNotifier wires the notifier with a capture function instead of
// a live SMTP client.
func newTestEmailNotifier(captured *capturedMail, sendErr error) *EmailNotifier {
	n := NewEmailNotifier(config.EmailSettings{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		User:     "sender@example.com",
		Password: "secret",
		From:     "sender@example.com",
	}, map[string]string{config.DefaultEmailTemplate: "¡Feliz cumpleaños!"})

	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*captured = capturedMail{addr: addr, from: from, to: to, msg: msg}
		return sendErr
	}
	return n
}

func TestEmailNotifier_Send(t *testing.T) {
	var captured capturedMail
	n := newTestEmailNotifier(&captured, nil)

	err := n.Send(context.Background(), Message{
		Recipient:  "ana@example.com",
		TemplateID: config.DefaultEmailTemplate,
		Variables:  map[string]string{"nombre": "Ana"},
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", captured.addr)
	assert.Equal(t, "sender@example.com", captured.from)
	assert.Equal(t, []string{"ana@example.com"}, captured.to)

	payload := string(captured.msg)
	assert.Contains(t, payload, "To: ana@example.com\r\n")
	assert.Contains(t, payload, "MIME-Version: 1.0\r\n")
	assert.Contains(t, payload, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	// Template variable substituted into the embedded HTML body.
	assert.Contains(t, payload, "Ana")
	assert.NotContains(t, payload, "{{nombre}}")
	// Localized subject survives non-ASCII via Q-encoding.
	assert.Contains(t, payload, "Subject: =?utf-8?q?")
}

func TestEmailNotifier_Send_UnknownTemplate(t *testing.T) {
	var captured capturedMail
	n := newTestEmailNotifier(&captured, nil)

	err := n.Send(context.Background(), Message{
		Recipient:  "ana@example.com",
		TemplateID: "no-such-template",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrTemplateMissing)
	assert.Nil(t, captured.msg, "Nothing should be submitted for an unknown template")
}

func TestEmailNotifier_Send_SMTPError(t *testing.T) {
	var captured capturedMail
	smtpErr := errors.New("550 mailbox unavailable")
	n := newTestEmailNotifier(&captured, smtpErr)

	err := n.Send(context.Background(), Message{
		Recipient:  "ana@example.com",
		TemplateID: config.DefaultEmailTemplate,
		Variables:  map[string]string{"nombre": "Ana"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, smtpErr)
	assert.Contains(t, err.Error(), config.ErrSMTPSend)
}

func TestEmailNotifier_Send_ContextCancelled(t *testing.T) {
	var captured capturedMail
	n := newTestEmailNotifier(&captured, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Send(ctx, Message{Recipient: "ana@example.com", TemplateID: config.DefaultEmailTemplate})

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
	assert.Nil(t, captured.msg)
}

func TestEmailNotifier_FallbackSubject(t *testing.T) {
	var captured capturedMail
	n := newTestEmailNotifier(&captured, nil)
	n.Subjects = nil // no localized subjects configured

	err := n.Send(context.Background(), Message{
		Recipient:  "ana@example.com",
		TemplateID: config.DefaultEmailTemplate,
	})
	require.NoError(t, err)

	assert.Contains(t, string(captured.msg), config.FallbackSubject)
}
