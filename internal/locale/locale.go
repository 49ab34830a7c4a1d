// Package locale holds the certificate translation tables and locale-aware date formatting.
package locale

import (
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/uk"
)

// Default is used for empty or unknown languages
const Default = "en"

// Translation keys
const (
	KeyCertifies        = "certifies"
	KeyIssuedOn         = "issued_on"
	KeyValidationNumber = "validation_number"
	KeySignatureCaption = "signature_caption"
)

// TitleKey returns the key of a certificate type's title
func TitleKey(certType string) string {
	return "title." + certType
}

// HelperKey returns the key of a certificate type's helper phrase
func HelperKey(certType string) string {
	return "helper." + certType
}

var translations = map[string]map[string]string{
	"en": {
		"title.achievement":  "Certificate of Achievement",
		"title.completion":   "Certificate of Completion",
		"title.ownership":    "Certificate of Ownership",
		"helper.achievement": "has successfully",
		"helper.completion":  "has completed",
		"helper.ownership":   "is the owner of",
		KeyCertifies:         "This certifies that",
		KeyIssuedOn:          "Issued on",
		KeyValidationNumber:  "Certificate Validation Number",
		KeySignatureCaption:  "CEO of TrustMeBro",
	},
	"uk": {
		"title.achievement":  "Сертифікат про досягнення",
		"title.completion":   "Сертифікат про завершення",
		"title.ownership":    "Сертифікат власності",
		"helper.achievement": "успішно",
		"helper.completion":  "завершив(-ла)",
		"helper.ownership":   "є власником",
		KeyCertifies:         "Цим засвідчується, що",
		KeyIssuedOn:          "Видано",
		KeyValidationNumber:  "Номер перевірки сертифіката",
		KeySignatureCaption:  "Генеральний директор TrustMeBro",
	},
}

var calendars = map[string]locales.Translator{
	"en": en.New(),
	"uk": uk.New(),
}

// Normalize lowercases a language tag and falls back to Default when unsupported
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if _, ok := translations[lang]; ok {
		return lang
	}
	return Default
}

// Supported reports whether lang has its own translation table
func Supported(lang string) bool {
	_, ok := translations[strings.ToLower(strings.TrimSpace(lang))]
	return ok
}

// Translate looks up key for lang. Unknown keys are returned unchanged.
func Translate(lang, key string) string {
	if text, ok := translations[Normalize(lang)][key]; ok {
		return text
	}
	return key
}

// FormatDate renders t as a long date with the language's month names
func FormatDate(lang string, t time.Time) string {
	return calendars[Normalize(lang)].FmtDateLong(t)
}

// IssuedOn returns the full "issued on" line for a certificate
func IssuedOn(lang string, t time.Time) string {
	return Translate(lang, KeyIssuedOn) + " " + FormatDate(lang, t)
}
