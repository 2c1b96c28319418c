package profile

import (
	"github.com/parentsmadrasa/sessionkit"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. English text doubles as the key.
const (
	msgTitle          = "Profile"
	msgLogout         = "Logout"
	msgLogoutA11y     = "Logout from application"
	msgConfirmPrompt  = "Are you sure you want to log out?"
	msgConfirm        = "Confirm"
	msgCancel         = "Cancel"
	msgLoggingOut     = "Logging out..."
	msgLoggedOut      = "You have been logged out."
	msgRetry          = "Retry"
	msgForceLogout    = "Force logout"
	msgForcedOut      = "Session data cleared. Redirecting to sign in."
	msgClearFailed    = sessionkit.ClearFailedMessage
	msgGenericFailure = "Something went wrong. Please try again."
)

// Supported lists the UI languages in preference order.
var Supported = []language.Tag{language.English, language.Malayalam}

var (
	matcher = language.NewMatcher(Supported)
	texts   = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(tag language.Tag, entries map[string]string) {
		for key, text := range entries {
			_ = b.SetString(tag, key, text)
		}
	}

	en := make(map[string]string)
	for _, key := range []string{
		msgTitle, msgLogout, msgLogoutA11y, msgConfirmPrompt, msgConfirm, msgCancel,
		msgLoggingOut, msgLoggedOut, msgRetry, msgForceLogout, msgForcedOut,
		msgClearFailed, msgGenericFailure,
	} {
		en[key] = key
	}
	set(language.English, en)

	set(language.Malayalam, map[string]string{
		msgTitle:          "പ്രൊഫൈൽ",
		msgLogout:         "ലോഗൗട്ട്",
		msgLogoutA11y:     "ആപ്ലിക്കേഷനിൽ നിന്ന് ലോഗൗട്ട് ചെയ്യുക",
		msgConfirmPrompt:  "നിങ്ങൾക്ക് ലോഗൗട്ട് ചെയ്യണമെന്ന് ഉറപ്പാണോ?",
		msgConfirm:        "സ്ഥിരീകരിക്കുക",
		msgCancel:         "റദ്ദാക്കുക",
		msgLoggingOut:     "ലോഗൗട്ട് ചെയ്യുന്നു...",
		msgLoggedOut:      "നിങ്ങൾ ലോഗൗട്ട് ചെയ്തു.",
		msgRetry:          "വീണ്ടും ശ്രമിക്കുക",
		msgForceLogout:    "നിർബന്ധിത ലോഗൗട്ട്",
		msgForcedOut:      "സെഷൻ ഡാറ്റ മായ്ച്ചു. സൈൻ ഇൻ പേജിലേക്ക് മാറുന്നു.",
		msgClearFailed:    "സെഷൻ ഡാറ്റ മായ്ക്കാൻ കഴിഞ്ഞില്ല. ദയവായി പേജ് പുതുക്കാൻ ശ്രമിക്കുക.",
		msgGenericFailure: "എന്തോ പിശക് സംഭവിച്ചു. ദയവായി വീണ്ടും ശ്രമിക്കുക.",
	})
	return b
}

// MatchLanguage picks a supported language from an Accept-Language header.
// Unparseable or unsupported input falls back to English.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return language.English
	}
	return Supported[index]
}

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(texts))
}
