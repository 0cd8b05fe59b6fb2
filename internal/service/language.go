package service

import (
	"strings"

	"callpulse/internal/model"
)

// Country dialing prefixes mapped to prompt languages. Longer prefixes
// are checked first so "351" wins over "35".
var countryLanguages = []struct {
	prefix string
	lang   model.Language
}{
	{"351", model.LangPT}, // Portugal
	{"44", model.LangEN},  // UK
	{"33", model.LangFR},  // France
	{"49", model.LangDE},  // Germany
	{"39", model.LangIT},  // Italy
	{"34", model.LangES},  // Spain
	{"1", model.LangEN},   // US/Canada
}

// DetectLanguageFromCallerID picks a prompt language from the caller's
// country dialing code, defaulting to English.
func DetectLanguageFromCallerID(callerID string) model.Language {
	callerID = strings.TrimPrefix(callerID, "+")
	for _, entry := range countryLanguages {
		if strings.HasPrefix(callerID, entry.prefix) {
			return entry.lang
		}
	}
	return model.LangEN
}
