package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language represents a supported language.
type Language string

const (
	// English is the English language.
	English Language = "en"
	// Turkish is the Turkish language.
	Turkish Language = "tr"
)

// DefaultLanguage is the fallback language.
const DefaultLanguage = English

var supported = []Language{English, Turkish}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Turkish})

// translations maps language codes to message keys and their values.
var translations = map[Language]map[string]string{
	English: {
		"plan.no_exercises":         "No exercises found for this selection.",
		"workout.saved":             "Workout saved successfully!",
		"workout.error":             "An error occurred while saving the workout.",
		"workout.nothing_completed": "Complete at least one exercise before saving.",
		"workout.auth_required":     "Please sign in first.",
		"calorie.invalid":           "Age, height and weight must be positive numbers.",
	},
	Turkish: {
		"plan.no_exercises":         "Bu seçim için uygun egzersiz bulunamadı.",
		"workout.saved":             "Antrenman başarıyla kaydedildi!",
		"workout.error":             "Antrenman kaydedilirken bir hata oluştu.",
		"workout.nothing_completed": "Kaydetmeden önce en az bir egzersizi tamamlayın.",
		"workout.auth_required":     "Lütfen önce giriş yapın!",
		"calorie.invalid":           "Yaş, boy ve kilo pozitif sayı olmalıdır.",
	},
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return append([]Language(nil), supported...)
}

// Parse returns the supported language named by s.
func Parse(s string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	_, ok := translations[lang]
	return lang, ok
}

// Negotiate picks the response language from an explicit choice (usually a
// "lang" query parameter) and falls back to the Accept-Language header.
func Negotiate(explicit, acceptLanguage string) Language {
	if lang, ok := Parse(explicit); ok {
		return lang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	return supported[idx]
}

// Translate returns the translation for the given key in the specified language.
// If the key is not found, it falls back to the default language.
// If still not found, it returns the key itself.
func Translate(lang Language, key string) string {
	if msgs, ok := translations[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Labels holds one display string per language.
type Labels map[Language]string

// Get returns the label for lang, falling back to the default language.
func (l Labels) Get(lang Language) string {
	if s, ok := l[lang]; ok && s != "" {
		return s
	}
	return l[DefaultLanguage]
}
