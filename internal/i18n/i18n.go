// Package i18n renders localized message wording from embedded JSON
// locale files. The language is fixed per run by configuration, keeping
// every rendered message deterministic.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-cumple/internal/birthday"
	"github.com/tartampluch/go-cumple/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator wraps a go-i18n localizer for one fixed language.
type Translator struct {
	Bundle             *goi18n.Bundle
	Localizer          *goi18n.Localizer
	SupportedLanguages []string
}

// New initializes the translation bundle, loads every embedded locale, and
// fixes the localizer to the requested language (falling back through
// English for missing keys).
func New(lang string) *Translator {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{Bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return t
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		trimmed := strings.TrimPrefix(name, "active.")
		langCode := strings.TrimSuffix(trimmed, ".json")

		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		t.SupportedLanguages = append(t.SupportedLanguages, langCode)

		path := "locales/" + name
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
		} else {
			slog.Debug(config.MsgLocaleLoaded,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyLang, langCode,
				config.LogKeyFile, name,
			)
		}
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.Localizer = goi18n.NewLocalizer(bundle, lang)

	return t
}

// LocaleFile returns the raw embedded JSON document for a language code.
func LocaleFile(lang string) ([]byte, error) {
	return localeFS.ReadFile("locales/active." + lang + ".json")
}

// Msg translates a key safely; missing keys fall back to the key itself.
func (t *Translator) Msg(key string) string {
	return t.MsgData(key, nil)
}

// MsgData translates a key with template data.
func (t *Translator) MsgData(key string, data map[string]interface{}) string {
	if t.Localizer == nil {
		return key
	}
	msg, err := t.Localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// MessageFunc returns the localized tier formatter injected into the
// birthday calculator: today, tomorrow, within a week, within a month,
// further out.
func (t *Translator) MessageFunc() birthday.MessageFunc {
	return func(name string, days, age int) string {
		data := map[string]interface{}{"Name": name, "Days": days, "Age": age}
		switch {
		case days == 0:
			return t.MsgData(config.TKeyMsgToday, data)
		case days == 1:
			return t.MsgData(config.TKeyMsgTomorrow, data)
		case days <= 7:
			return t.MsgData(config.TKeyMsgWeek, data)
		case days <= 30:
			return t.MsgData(config.TKeyMsgMonth, data)
		default:
			return t.MsgData(config.TKeyMsgFar, data)
		}
	}
}

// SummaryFunc returns the localized calendar event summary formatter.
// Age zero marks the birth event itself.
func (t *Translator) SummaryFunc() func(name string, age int) string {
	return func(name string, age int) string {
		data := map[string]interface{}{"Name": name, "Age": age}
		if age == 0 {
			return t.MsgData(config.TKeyEvtSummaryBirth, data)
		}
		return t.MsgData(config.TKeyEvtSummaryAge, data)
	}
}

// MailSubjects returns the localized per-template subject lines for the
// email notifier.
func (t *Translator) MailSubjects() map[string]string {
	return map[string]string{
		config.DefaultEmailTemplate: t.Msg(config.TKeyMailSubject),
	}
}

// WhatsAppTemplates returns the localized per-template message bodies for
// the WhatsApp notifier. Bodies carry single-brace placeholders that the
// notifier substitutes literally.
func (t *Translator) WhatsAppTemplates() map[string]string {
	return map[string]string{
		config.DefaultEmailTemplate: t.Msg(config.TKeyWhatsAppBody),
	}
}
