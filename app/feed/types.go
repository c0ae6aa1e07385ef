package feed

import (
	"errors"
	"fmt"

	"github.com/lysyi3m/news-bot/app/i18n"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownLanguage = i18n.ErrUnknownLanguage
	ErrFetchTimeout    = errors.New("fetch timed out")
	ErrFetchTransport  = errors.New("fetch transport error")
	ErrFetchHTTP       = errors.New("fetch HTTP error")
	ErrMalformedFeed   = errors.New("malformed feed")
)

// HTTPError reports a non-2xx response from a feed address.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d from %s", e.Status, e.URL)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrFetchHTTP
}

// Item is one normalized feed entry. Title and Link are always set.
type Item struct {
	Title       string
	Link        string
	Description string
}
