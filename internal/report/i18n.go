package report

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
)

// Language represents a supported localization code.
type Language string

const (
	// LangEnglish renders the report in English.
	LangEnglish Language = "en"
	// LangTurkish renders the report in Turkish.
	LangTurkish Language = "tr"
)

// ErrUnsupportedLanguage is returned when an unknown language code is requested.
var ErrUnsupportedLanguage = errors.New("report: unsupported language")

//go:embed en.json tr.json
var localeFS embed.FS

var locales = map[Language]map[string]string{}

func init() {
	mustLoadLocale(LangEnglish, "en.json")
	mustLoadLocale(LangTurkish, "tr.json")
}

func mustLoadLocale(lang Language, file string) {
	data, err := localeFS.ReadFile(file)
	if err != nil {
		panic(fmt.Sprintf("report: load locale %s: %v", lang, err))
	}
	var parsed map[string]string
	if err := json.Unmarshal(data, &parsed); err != nil {
		panic(fmt.Sprintf("report: parse locale %s: %v", lang, err))
	}
	locales[lang] = parsed
}

// ValidateLanguage reports whether the language code is supported.
func ValidateLanguage(lang Language) error {
	if _, ok := locales[lang]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return nil
}

// label resolves a translation key, falling back to English and finally to
// the key itself.
func label(lang Language, key string) string {
	if table, ok := locales[lang]; ok {
		if v, ok := table[key]; ok {
			return v
		}
	}
	if v, ok := locales[LangEnglish][key]; ok {
		return v
	}
	return key
}
