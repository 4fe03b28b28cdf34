package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tartampluch/go-cumple/internal/config"
)

// WhatsAppNotifier posts messages to a WhatsApp gateway API
// (POST {url}/send/message, HTTP Basic Auth, JSON payload). The gateway
// reports success through a "code" field in its JSON response.
type WhatsAppNotifier struct {
	URL      string
	User     string
	Password string

	// Templates maps template IDs to localized text with {placeholder} tokens.
	Templates map[string]string

	Client *http.Client
}

// NewWhatsAppNotifier builds a notifier from the WhatsApp settings.
func NewWhatsAppNotifier(s config.WhatsAppSettings, templates map[string]string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		URL:       s.URL,
		User:      s.User,
		Password:  s.Password,
		Templates: templates,
		Client:    &http.Client{Timeout: config.HTTPTimeout},
	}
}

type whatsAppRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type whatsAppResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send renders the text template and posts it to the gateway. The phone
// number is reduced to digits and suffixed with the WhatsApp JID domain.
func (n *WhatsAppNotifier) Send(ctx context.Context, msg Message) error {
	template, ok := n.Templates[msg.TemplateID]
	if !ok {
		return fmt.Errorf("%s: %q", config.ErrTemplateMissing, msg.TemplateID)
	}

	payload := whatsAppRequest{
		Phone:   digitsOnly(msg.Recipient) + config.WhatsAppJID,
		Message: renderSingle(template, msg.Variables),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWhatsAppSend, err)
	}

	endpoint := strings.TrimSuffix(n.URL, "/") + config.WhatsAppSendPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWhatsAppSend, err)
	}
	req.Header.Set(config.HeaderContentType, config.MimeJSON)
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.SetBasicAuth(n.User, n.Password)

	slog.Debug("Posting WhatsApp message",
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyRecipient, msg.Recipient,
		config.LogKeyTemplate, msg.TemplateID,
	)

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWhatsAppSend, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %d", config.ErrWhatsAppStatus, resp.StatusCode)
	}

	var apiResp whatsAppResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&apiResp); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWhatsAppSend, err)
	}
	if apiResp.Code != config.WhatsAppOK {
		return fmt.Errorf("%s: %s (%s)", config.ErrWhatsAppCode, apiResp.Code, apiResp.Message)
	}

	return nil
}
