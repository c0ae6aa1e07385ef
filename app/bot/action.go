package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lysyi3m/news-bot/app/dispatch"
	"github.com/lysyi3m/news-bot/app/i18n"
)

// MaxSetMinutes caps the /set interval at one week.
const MaxSetMinutes = 7 * 24 * 60

var (
	ErrUsage           = errors.New("usage error")
	ErrUnknownCallback = errors.New("unknown callback")
)

// UsageError reports malformed command arguments.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("/%s: %s", e.Command, e.Reason)
}

func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// Action is what one inbound update asks the bot to do.
type Action interface {
	action()
}

type Start struct {
	FirstName string
}

type Help struct{}

// Set schedules an auto-post of Category every Minutes.
type Set struct {
	Minutes  int
	Category string
}

type Stop struct{}

type Language struct {
	Lang i18n.Language
}

type Dispatch struct {
	Request dispatch.Request
}

type SearchHelp struct{}

type Menu struct{}

func (Start) action()      {}
func (Help) action()       {}
func (Set) action()        {}
func (Stop) action()       {}
func (Language) action()   {}
func (Dispatch) action()   {}
func (SearchHelp) action() {}
func (Menu) action()       {}

// Callback data sent by the menu buttons.
const (
	callbackCategoryPrefix = "cat:"
	callbackLanguagePrefix = "lang:"
	callbackRandom         = "random"
	callbackPrices         = "prices"
	callbackHeadlines      = "headlines"
	callbackSearchHelp     = "search_help"
	callbackMenu           = "menu"
)

// ParseCommand turns a slash command and its arguments into an Action.
// Unknown commands show the help text.
func ParseCommand(command, args, firstName string) (Action, error) {
	switch strings.ToLower(command) {
	case "start":
		return Start{FirstName: firstName}, nil
	case "help":
		return Help{}, nil
	case "menu":
		return Menu{}, nil
	case "set":
		return parseSet(args)
	case "stop":
		return Stop{}, nil
	case "lang":
		lang, err := i18n.ParseLanguage(strings.TrimSpace(args))
		if err != nil {
			return nil, &UsageError{Command: "lang", Reason: "unsupported language"}
		}
		return Language{Lang: lang}, nil
	default:
		return Help{}, nil
	}
}

func parseSet(args string) (Action, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return nil, &UsageError{Command: "set", Reason: "expected <minutes> <category>"}
	}

	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, &UsageError{Command: "set", Reason: fmt.Sprintf("minutes %q is not a number", fields[0])}
	}
	if minutes <= 0 {
		return nil, &UsageError{Command: "set", Reason: "minutes must be positive"}
	}
	if minutes > MaxSetMinutes {
		return nil, &UsageError{Command: "set", Reason: fmt.Sprintf("minutes must not exceed %d", MaxSetMinutes)}
	}

	return Set{Minutes: minutes, Category: strings.ToLower(fields[1])}, nil
}

// ParseCallback turns inline button data into an Action.
func ParseCallback(data string) (Action, error) {
	switch {
	case strings.HasPrefix(data, callbackCategoryPrefix):
		key := strings.TrimPrefix(data, callbackCategoryPrefix)
		return Dispatch{Request: dispatch.CategoryRequest(key)}, nil
	case strings.HasPrefix(data, callbackLanguagePrefix):
		lang, err := i18n.ParseLanguage(strings.TrimPrefix(data, callbackLanguagePrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
		}
		return Language{Lang: lang}, nil
	case data == callbackRandom:
		return Dispatch{Request: dispatch.RandomRequest()}, nil
	case data == callbackPrices:
		return Dispatch{Request: dispatch.PricesRequest()}, nil
	case data == callbackHeadlines:
		return Dispatch{Request: dispatch.HeadlinesRequest()}, nil
	case data == callbackSearchHelp:
		return SearchHelp{}, nil
	case data == callbackMenu:
		return Menu{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
}

// ParseText treats free text as a search query.
func ParseText(text string) Action {
	return Dispatch{Request: dispatch.SearchRequest(strings.TrimSpace(text))}
}
