package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-bot/app/database"
	"github.com/lysyi3m/news-bot/app/feed"
	"github.com/lysyi3m/news-bot/app/i18n"
	"github.com/lysyi3m/news-bot/app/search"
)

// Sender delivers one MarkdownV2 message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type Fetcher interface {
	Run(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Article, error)
}

// SendError is a transport failure that ended a round after Sent messages
// had already been delivered.
type SendError struct {
	Sent int
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed after %d messages: %v", e.Sent, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// countingSender counts successful sends of one Handle call.
type countingSender struct {
	Sender
	sent   int
	failed bool
}

func (c *countingSender) Send(ctx context.Context, chatID int64, text string) error {
	if err := c.Sender.Send(ctx, chatID, text); err != nil {
		c.failed = true
		return err
	}
	c.sent++
	return nil
}

// Service runs the resolve, fetch, normalize, render and send pipeline for
// one request.
type Service struct {
	resolver     *Resolver
	fetcher      Fetcher
	parser       *feed.Parser
	formatter    *feed.Formatter
	searcher     Searcher
	sender       Sender
	preferences  *i18n.Preferences
	catalog      i18n.Catalog
	fallback     i18n.Language
	deliveries   database.DeliveryRepository
	fetchTimeout time.Duration
}

func NewService(resolver *Resolver, fetcher Fetcher, parser *feed.Parser, formatter *feed.Formatter, searcher Searcher, sender Sender, preferences *i18n.Preferences, catalog i18n.Catalog, fallback i18n.Language, deliveries database.DeliveryRepository, fetchTimeout time.Duration) *Service {
	return &Service{
		resolver:     resolver,
		fetcher:      fetcher,
		parser:       parser,
		formatter:    formatter,
		searcher:     searcher,
		sender:       sender,
		preferences:  preferences,
		catalog:      catalog,
		fallback:     fallback,
		deliveries:   deliveries,
		fetchTimeout: fetchTimeout,
	}
}

// Handle answers one request. Source failures become a localized notice in
// the chat; a send failure is returned as a *SendError.
func (s *Service) Handle(ctx context.Context, chatID int64, req Request) error {
	counter := &countingSender{Sender: s.sender}

	round := *s
	round.sender = counter

	err := round.handle(ctx, chatID, req)
	if err != nil && counter.failed {
		return &SendError{Sent: counter.sent, Err: err}
	}
	return err
}

func (s *Service) handle(ctx context.Context, chatID int64, req Request) error {
	lang := s.preferences.Get(chatID)
	table := s.catalog.MustGet(lang, s.fallback)

	plan, err := s.resolver.Resolve(req, lang)
	if err != nil {
		slog.Debug("Request not resolved", "chat_id", chatID, "kind", req.Kind, "category", req.Category, "error", err)

		switch {
		case errors.Is(err, ErrEmptyQuery):
			return s.sender.Send(ctx, chatID, feed.EscapeMarkdown(table.SearchPrompt))
		case errors.Is(err, feed.ErrUnknownCategory), errors.Is(err, feed.ErrUnknownLanguage):
			return s.sender.Send(ctx, chatID, feed.EscapeMarkdown(table.InvalidTopic))
		default:
			return fmt.Errorf("failed to resolve request: %w", err)
		}
	}

	if plan.Search != nil {
		return s.handleSearch(ctx, chatID, lang, table, plan)
	}

	label := table.CategoryName(plan.Category)
	if plan.Kind == KindPrices {
		label = table.PricesLabel
	}

	for _, address := range plan.Addresses {
		if err := s.handleAddress(ctx, chatID, lang, table, plan, address, label); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) handleAddress(ctx context.Context, chatID int64, lang i18n.Language, table *i18n.Strings, plan *Plan, address, label string) error {
	data, err := s.fetcher.Run(ctx, address, s.fetchTimeout)
	if err != nil {
		slog.Warn("Failed to fetch feed", "chat_id", chatID, "url", address, "error", err)
		return s.sender.Send(ctx, chatID, feed.EscapeMarkdown(table.ConnectionError))
	}

	items, err := s.parser.RunFrom(address, data, plan.Limit)
	if err != nil {
		slog.Warn("Failed to parse feed", "chat_id", chatID, "url", address, "error", err)
		return s.sender.Send(ctx, chatID, feed.EscapeMarkdown(table.NoResults))
	}

	if len(items) == 0 {
		return s.sender.Send(ctx, chatID, feed.EscapeMarkdown(table.NoResults))
	}

	for _, item := range items {
		if err := s.deliver(ctx, chatID, lang, plan, item, label); err != nil {
			return err
		}
	}

	slog.Debug("Feed delivered", "chat_id", chatID, "kind", plan.Kind, "category", plan.Category, "url", address, "items", len(items))

	return nil
}

func (s *Service) handleSearch(ctx context.Context, chatID int64, lang i18n.Language, table *i18n.Strings, plan *Plan) error {
	articles, err := s.searcher.Search(ctx, *plan.Search)
	if err != nil {
		slog.Warn("News search failed", "chat_id", chatID, "kind", plan.Kind, "error", err)
		return s.sender.Send(ctx, chatID, feed.EscapeMarkdown(table.ConnectionError))
	}

	if len(articles) > plan.Limit {
		articles = articles[:plan.Limit]
	}

	if len(articles) == 0 {
		return s.sender.Send(ctx, chatID, feed.EscapeMarkdown(table.NoResults))
	}

	label := ""
	if plan.Kind == KindSearch {
		label = table.SearchLabel
	}

	for _, a := range articles {
		item := feed.Item{Title: a.Title, Link: a.URL, Description: a.Description}
		if err := s.deliver(ctx, chatID, lang, plan, item, label); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) deliver(ctx context.Context, chatID int64, lang i18n.Language, plan *Plan, item feed.Item, label string) error {
	if err := s.sender.Send(ctx, chatID, s.formatter.Render(item, lang, label)); err != nil {
		return fmt.Errorf("failed to send item: %w", err)
	}

	if s.deliveries == nil {
		return nil
	}

	err := s.deliveries.Record(ctx, database.Delivery{
		ChatID:   chatID,
		Kind:     plan.Kind.String(),
		Category: plan.Category,
		Language: lang.String(),
		Title:    item.Title,
		Link:     item.Link,
	})
	if err != nil {
		slog.Warn("Failed to record delivery", "chat_id", chatID, "error", err)
	}

	return nil
}
