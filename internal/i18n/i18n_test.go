package i18n_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cumple/internal/config"
	"github.com/tartampluch/go-cumple/internal/i18n"
)

// requiredKeys lists every translation key the application renders at runtime.
var requiredKeys = []string{
	config.TKeyMsgToday,
	config.TKeyMsgTomorrow,
	config.TKeyMsgWeek,
	config.TKeyMsgMonth,
	config.TKeyMsgFar,
	config.TKeyEvtSummaryAge,
	config.TKeyEvtSummaryBirth,
	config.TKeyMailSubject,
	config.TKeyWhatsAppBody,
}

// TestLocales_Integrity ensures every supported language carries every key.
// A key missing from one locale would silently render as the raw key.
func TestLocales_Integrity(t *testing.T) {
	t.Parallel()

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			tr := i18n.New(lang)
			require.Contains(t, tr.SupportedLanguages, lang, "Locale file for %s must be embedded", lang)

			for _, key := range requiredKeys {
				msg := tr.Msg(key)
				assert.NotEqual(t, key, msg, "Key %s must be translated for %s", key, lang)
				assert.NotEmpty(t, msg)
			}
		})
	}
}

// TestLocales_SameKeySets compares the raw JSON files so a key added to one
// language cannot be forgotten in another.
func TestLocales_SameKeySets(t *testing.T) {
	keySets := make(map[string][]string)

	for _, lang := range config.SupportedLanguages {
		raw, err := i18n.LocaleFile(lang)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))

		for k := range m {
			keySets[k] = append(keySets[k], lang)
		}
	}

	for key, langs := range keySets {
		assert.Len(t, langs, len(config.SupportedLanguages),
			"Key %s is missing from some locales (present in %v)", key, langs)
	}
}

func TestMsg_MissingKeyFallsBackToKey(t *testing.T) {
	tr := i18n.New("es")
	assert.Equal(t, "no_such_key", tr.Msg("no_such_key"))
}

func TestMessageFunc_Tiers(t *testing.T) {
	format := i18n.New("es").MessageFunc()

	tests := []struct {
		name string
		days int
		want string
	}{
		{"Today", 0, "¡HOY ES EL CUMPLEAÑOS DE Ana!"},
		{"Tomorrow", 1, "Mañana"},
		{"Within a week", 5, "muy pronto"},
		{"Within a month", 20, "este mes"},
		{"Far away", 200, "Faltan 200 días"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := format("Ana", tt.days, 30)
			assert.Contains(t, msg, tt.want)
		})
	}
}

func TestMessageFunc_English(t *testing.T) {
	format := i18n.New("en").MessageFunc()

	assert.Contains(t, format("Ana", 0, 30), "TODAY IS Ana'S BIRTHDAY")
	assert.Contains(t, format("Ana", 200, 30), "200 days until Ana's birthday")
}

func TestSummaryFunc(t *testing.T) {
	summary := i18n.New("es").SummaryFunc()

	assert.Equal(t, "Cumpleaños: Ana (35)", summary("Ana", 35))
	assert.Equal(t, "Cumpleaños: Bebé (nacimiento)", summary("Bebé", 0))
}

func TestNotifierWording(t *testing.T) {
	tr := i18n.New("es")

	subjects := tr.MailSubjects()
	require.Contains(t, subjects, config.DefaultEmailTemplate)
	assert.NotEmpty(t, subjects[config.DefaultEmailTemplate])

	templates := tr.WhatsAppTemplates()
	require.Contains(t, templates, config.DefaultEmailTemplate)
	// The WhatsApp body keeps its single-brace placeholder for the notifier.
	assert.True(t, strings.Contains(templates[config.DefaultEmailTemplate], "{nombre}"))
}

func TestNew_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	tr := i18n.New("fr")
	assert.Contains(t, tr.Msg(config.TKeyMsgToday), "TODAY IS")
}
