package i18n

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var ErrUnknownLanguage = errors.New("unknown language")

type Language string

const (
	Persian Language = "fa"
	English Language = "en"
)

// Supported lists the display languages in menu order.
var Supported = []Language{Persian, English}

func (l Language) String() string {
	return string(l)
}

func (l Language) Valid() bool {
	for _, s := range Supported {
		if l == s {
			return true
		}
	}
	return false
}

// ParseLanguage accepts a bare code or a BCP 47 tag ("en-US", "fa_IR") and
// maps it onto one of the supported languages.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return "", fmt.Errorf("%w: empty code", ErrUnknownLanguage)
	}

	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}

	base, _ := tag.Base()
	lang := Language(base.String())
	if !lang.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}

	return lang, nil
}

// Other returns the language a toggle button switches to.
func (l Language) Other() Language {
	if l == English {
		return Persian
	}
	return English
}
