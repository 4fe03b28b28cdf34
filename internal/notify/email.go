package notify

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/tartampluch/go-cumple/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// EmailNotifier sends HTML mails over SMTP with STARTTLS (the classic
// submission setup on port 587). Templates are embedded HTML files keyed by
// Message.TemplateID; subjects come from the Subjects map with a generic
// fallback.
type EmailNotifier struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	// Subjects maps template IDs to localized subject lines.
	Subjects map[string]string

	// sendMail allows tests to capture the wire payload without a server.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier builds a notifier from the email settings.
func NewEmailNotifier(s config.EmailSettings, subjects map[string]string) *EmailNotifier {
	return &EmailNotifier{
		Host:     s.SMTPHost,
		Port:     s.SMTPPort,
		User:     s.User,
		Password: s.Password,
		From:     s.From,
		Subjects: subjects,
		sendMail: smtp.SendMail,
	}
}

// Send renders the template and submits the mail. One attempt, no retries.
func (n *EmailNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := templateFS.ReadFile("templates/" + msg.TemplateID + ".html")
	if err != nil {
		return fmt.Errorf("%s: %q", config.ErrTemplateMissing, msg.TemplateID)
	}

	html := renderDouble(string(body), msg.Variables)

	subject := n.Subjects[msg.TemplateID]
	if subject == "" {
		subject = config.FallbackSubject
	}

	payload := buildMIMEMessage(n.From, msg.Recipient, subject, html)

	addr := n.Host + config.AddrSeparator + strconv.Itoa(n.Port)
	auth := smtp.PlainAuth("", n.User, n.Password, n.Host)

	slog.Debug("Submitting email",
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyRecipient, msg.Recipient,
		config.LogKeyTemplate, msg.TemplateID,
	)

	if err := n.sendMail(addr, auth, n.From, []string{msg.Recipient}, payload); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSMTPSend, err)
	}
	return nil
}

// buildMIMEMessage assembles a single-part HTML mail. The subject is
// Q-encoded so localized wording survives non-ASCII characters.
func buildMIMEMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")
	return []byte(b.String())
}
