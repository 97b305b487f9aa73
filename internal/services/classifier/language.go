package classifier

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/bobmcallan/carfeed/internal/models"
)

// nameToCode maps lower-cased English language names to ISO 639-1 codes.
var nameToCode = buildNameIndex()

// aliases covers names the model commonly returns that differ from the
// CLDR English display name.
var aliases = map[string]string{
	"mandarin":  "zh",
	"cantonese": "zh",
	"farsi":     "fa",
	"filipino":  "tl",
	"tagalog":   "tl",
}

func buildNameIndex() map[string]string {
	namer := display.English.Languages()
	index := make(map[string]string, 200)
	for a := 'a'; a <= 'z'; a++ {
		for b := 'a'; b <= 'z'; b++ {
			base, err := language.ParseBase(string([]rune{a, b}))
			if err != nil {
				continue
			}
			code := base.String()
			if len(code) != 2 {
				continue
			}
			if name := namer.Name(base); name != "" {
				index[strings.ToLower(name)] = code
			}
		}
	}
	return index
}

// LanguageCode converts a language name (or code) to a two-letter ISO 639-1
// code. Anything unrecognised, or a language without a two-letter code, is
// "un".
func LanguageCode(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "unknown" || n == "undetermined" {
		return models.LanguageUnknown
	}

	// "Chinese (Mandarin)" -> "chinese"
	if i := strings.Index(n, "("); i > 0 {
		if code, ok := lookupName(strings.TrimSpace(n[:i])); ok {
			return code
		}
	}
	if code, ok := lookupName(n); ok {
		return code
	}

	if base, err := language.ParseBase(n); err == nil {
		if code := base.String(); len(code) == 2 {
			return code
		}
	}
	return models.LanguageUnknown
}

func lookupName(n string) (string, bool) {
	if code, ok := nameToCode[n]; ok {
		return code, true
	}
	code, ok := aliases[n]
	return code, ok
}
