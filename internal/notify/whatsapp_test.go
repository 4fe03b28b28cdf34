package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cumple/internal/config"
)

// newGatewayServer fakes the WhatsApp HTTP API and captures the request.
func newGatewayServer(t *testing.T, code string, status int, captured *whatsAppRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, config.WhatsAppSendPath, r.URL.Path)
		assert.Equal(t, config.MimeJSON, r.Header.Get(config.HeaderContentType))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Basic auth header should be present")
		assert.Equal(t, "gateway", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(whatsAppResponse{Code: code, Message: "ok"})
	}))
}

func newTestWhatsAppNotifier(url string) *WhatsAppNotifier {
	return NewWhatsAppNotifier(config.WhatsAppSettings{
		URL:      url,
		User:     "gateway",
		Password: "secret",
	}, map[string]string{config.DefaultEmailTemplate: "¡Feliz cumpleaños, {nombre}!"})
}

func TestWhatsAppNotifier_Send(t *testing.T) {
	var captured whatsAppRequest
	ts := newGatewayServer(t, config.WhatsAppOK, http.StatusOK, &captured)
	defer ts.Close()

	// Trailing slash on the base URL must not produce a double slash.
	n := newTestWhatsAppNotifier(ts.URL + "/")

	err := n.Send(context.Background(), Message{
		Recipient:  "+52 1 55 1234-5678",
		TemplateID: config.DefaultEmailTemplate,
		Variables:  map[string]string{"nombre": "Ana"},
	})
	require.NoError(t, err)

	// Phone is reduced to digits and suffixed with the JID domain.
	assert.Equal(t, "5215512345678"+config.WhatsAppJID, captured.Phone)
	assert.Equal(t, "¡Feliz cumpleaños, Ana!", captured.Message)
}

func TestWhatsAppNotifier_Send_UnknownTemplate(t *testing.T) {
	n := newTestWhatsAppNotifier("http://localhost:0")

	err := n.Send(context.Background(), Message{Recipient: "5215512345678", TemplateID: "nope"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrTemplateMissing)
}

func TestWhatsAppNotifier_Send_GatewayFailureCode(t *testing.T) {
	// HTTP 200 but the gateway reports a logical failure in its body.
	var captured whatsAppRequest
	ts := newGatewayServer(t, "ERROR", http.StatusOK, &captured)
	defer ts.Close()

	n := newTestWhatsAppNotifier(ts.URL)

	err := n.Send(context.Background(), Message{
		Recipient:  "5215512345678",
		TemplateID: config.DefaultEmailTemplate,
		Variables:  map[string]string{"nombre": "Ana"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrWhatsAppCode)
}

func TestWhatsAppNotifier_Send_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	n := newTestWhatsAppNotifier(ts.URL)

	err := n.Send(context.Background(), Message{
		Recipient:  "5215512345678",
		TemplateID: config.DefaultEmailTemplate,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrWhatsAppStatus)
	assert.Contains(t, err.Error(), "502")
}

func TestRenderDouble(t *testing.T) {
	vars := map[string]string{"nombre": "Ana", "dias": "7"}

	assert.Equal(t, "Hola Ana, faltan 7 días", renderDouble("Hola {{nombre}}, faltan {{dias}} días", vars))
	// Unknown tokens stay visible instead of vanishing.
	assert.Equal(t, "Hola {{otro}}", renderDouble("Hola {{otro}}", vars))
	// Single braces are not the email variant's syntax.
	assert.Equal(t, "Hola {nombre}", renderDouble("Hola {nombre}", vars))
}

func TestRenderSingle(t *testing.T) {
	vars := map[string]string{"nombre": "Ana"}

	assert.Equal(t, "Hola Ana", renderSingle("Hola {nombre}", vars))
	assert.Equal(t, "Hola {otro}", renderSingle("Hola {otro}", vars))
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+52 1 55 1234-5678", "5215512345678"},
		{"(555) 123 4567", "5551234567"},
		{"5215512345678", "5215512345678"},
		{"", ""},
		{"abc", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, digitsOnly(tt.in), "input %q", tt.in)
	}
}
