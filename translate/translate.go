// Package translate formats user-facing messages in the host language.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("mos6502: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage overrides the detected locale with an explicit BCP 47 tag.
func SetLanguage(tag string) (err error) {
	lang, err := language.Parse(tag)
	if err != nil {
		return
	}

	printer = message.NewPrinter(lang)
	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
