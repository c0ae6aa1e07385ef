package feed

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lysyi3m/news-bot/app/i18n"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultDescriptionLimit = 150
	ellipsis                = "..."
)

// Formatter renders items as Telegram MarkdownV2 messages.
type Formatter struct {
	catalog          i18n.Catalog
	fallback         i18n.Language
	descriptionLimit int
	extractor        *ContentExtractor
}

func NewFormatter(catalog i18n.Catalog, fallback i18n.Language, descriptionLimit int) *Formatter {
	if descriptionLimit <= 0 {
		descriptionLimit = DefaultDescriptionLimit
	}
	return &Formatter{
		catalog:          catalog,
		fallback:         fallback,
		descriptionLimit: descriptionLimit,
		extractor:        NewContentExtractor(),
	}
}

// Render builds one message: bold title, optional description and a
// localized read-more link. label names where the item came from and is
// appended to the call to action when set.
func (f *Formatter) Render(item Item, lang i18n.Language, label string) string {
	table := f.catalog.MustGet(lang, f.fallback)

	var b strings.Builder

	b.WriteString("*")
	b.WriteString(EscapeMarkdown(item.Title))
	b.WriteString("*")

	if description := f.description(item.Description); description != "" {
		b.WriteString("\n\n")
		b.WriteString(EscapeMarkdown(description))
	}

	cta := table.ReadMore
	if label != "" {
		cta += " · " + label
	}

	b.WriteString("\n\n[")
	b.WriteString(EscapeMarkdown(cta))
	b.WriteString("](")
	b.WriteString(escapeLinkURL(item.Link))
	b.WriteString(")")

	return b.String()
}

func (f *Formatter) description(raw string) string {
	text, err := f.extractor.Run(raw)
	if err != nil {
		slog.Debug("Failed to extract description text", "error", err)
		return ""
	}
	return Truncate(text, f.descriptionLimit)
}

// EscapeMarkdown escapes every MarkdownV2 reserved character, backslash
// included.
func EscapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text)
}

func escapeLinkURL(link string) string {
	link = strings.ReplaceAll(link, `\`, `\\`)
	return strings.ReplaceAll(link, ")", `\)`)
}

// Truncate shortens text to at most limit characters plus an ellipsis. Cuts
// fall on normalization segment boundaries so a multi-byte or combining
// sequence is never split.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	var iter norm.Iter
	iter.InitString(norm.NFC, text)

	var b strings.Builder
	count := 0
	for !iter.Done() {
		segment := iter.Next()
		n := utf8.RuneCount(segment)
		if count+n > limit {
			return strings.TrimRight(b.String(), " ") + ellipsis
		}
		b.Write(segment)
		count += n
	}

	return b.String()
}
