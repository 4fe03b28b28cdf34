// Package notify dispatches congratulation messages over email and
// WhatsApp. Template rendering is literal placeholder substitution only:
// {{name}} for email HTML templates, {name} for WhatsApp text templates.
// Delivery, authentication and any retrying are entirely the concern of
// the underlying provider; this package makes exactly one attempt.
package notify

import (
	"context"
	"strings"
)

// Message is a channel-agnostic outbound message: who it goes to, which
// template renders it, and the values substituted into the template.
type Message struct {
	Recipient  string
	TemplateID string
	Variables  map[string]string
}

// Notifier sends a rendered message over one concrete channel.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// renderDouble substitutes {{key}} tokens. Unknown tokens are left intact
// so a missing variable is visible in the output rather than silently
// dropped.
func renderDouble(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return template
}

// renderSingle substitutes {key} tokens (the WhatsApp template variant).
func renderSingle(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{"+key+"}", value)
	}
	return template
}

// digitsOnly strips every non-numeric character from a phone number.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
