package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/news-bot/app/dispatch"
	"github.com/lysyi3m/news-bot/app/feed"
	"github.com/lysyi3m/news-bot/app/i18n"
	"github.com/lysyi3m/news-bot/app/tasks"
)

const pollTimeout = 60

// Handler runs the news pipeline for one request.
type Handler interface {
	Handle(ctx context.Context, chatID int64, req dispatch.Request) error
}

// JobScheduler manages auto-post jobs.
type JobScheduler interface {
	Schedule(chatID int64, interval, firstDelay time.Duration, category string) (tasks.Job, error)
	Cancel(chatID int64) bool
}

type Registry interface {
	AllCategories(lang i18n.Language) ([]string, error)
	HasCategory(lang i18n.Language, category string) bool
}

// Bot turns Telegram updates into actions and answers them in the chat's
// language.
type Bot struct {
	api         API
	sender      *Sender
	handler     Handler
	jobs        JobScheduler
	registry    Registry
	preferences *i18n.Preferences
	catalog     i18n.Catalog
	fallback    i18n.Language
	firstDelay  time.Duration
	serializer  *Serializer
}

func New(api API, handler Handler, jobs JobScheduler, registry Registry, preferences *i18n.Preferences, catalog i18n.Catalog, fallback i18n.Language, firstDelay time.Duration) *Bot {
	return &Bot{
		api:         api,
		sender:      NewSender(api),
		handler:     handler,
		jobs:        jobs,
		registry:    registry,
		preferences: preferences,
		catalog:     catalog,
		fallback:    fallback,
		firstDelay:  firstDelay,
		serializer:  NewSerializer(),
	}
}

// Run long-polls for updates until ctx is done or the update channel closes.
// Events of one chat are handled in order; chats run concurrently.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(u)

	slog.Info("Bot started polling for updates")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			event, ok := ParseUpdate(update)
			if !ok {
				continue
			}

			b.serializer.Submit(event.ChatID, func() {
				if err := b.HandleEvent(ctx, event); err != nil {
					slog.Error("Failed to handle update", "chat_id", event.ChatID, "error", err)
				}
			})
		}
	}
}

// Stop ends polling and waits for in-flight events.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	b.serializer.Wait()
}

// HandleEvent answers one event. The callback query, if any, is answered
// before anything else.
func (b *Bot) HandleEvent(ctx context.Context, event Event) error {
	if event.CallbackID != "" {
		if _, err := b.api.Request(tgbotapi.NewCallback(event.CallbackID, "")); err != nil {
			slog.Warn("Failed to answer callback query", "chat_id", event.ChatID, "error", err)
		}
	}

	lang := b.preferences.Get(event.ChatID)
	table := b.catalog.MustGet(lang, b.fallback)

	if event.Err != nil {
		return b.handleError(ctx, event.ChatID, table, event.Err)
	}

	switch action := event.Action.(type) {
	case Start:
		return b.sendMenu(ctx, event.ChatID, lang, table.WelcomeFor(action.FirstName))
	case Menu:
		return b.sendMenu(ctx, event.ChatID, lang, table.MenuPrompt)
	case Help:
		return b.reply(ctx, event.ChatID, table.Help)
	case SearchHelp:
		return b.reply(ctx, event.ChatID, table.SearchPrompt)
	case Set:
		return b.handleSet(ctx, event.ChatID, lang, table, action)
	case Stop:
		if b.jobs.Cancel(event.ChatID) {
			return b.reply(ctx, event.ChatID, table.JobCancelled)
		}
		return b.reply(ctx, event.ChatID, table.NoJob)
	case Language:
		return b.handleLanguage(ctx, event.ChatID, action.Lang)
	case Dispatch:
		return b.handler.Handle(ctx, event.ChatID, action.Request)
	default:
		return fmt.Errorf("unsupported action %T", event.Action)
	}
}

func (b *Bot) handleError(ctx context.Context, chatID int64, table *i18n.Strings, err error) error {
	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		slog.Debug("Command usage error", "chat_id", chatID, "command", usage.Command, "reason", usage.Reason)
		if usage.Command == "lang" {
			return b.reply(ctx, chatID, table.LanguageUsage)
		}
		return b.reply(ctx, chatID, table.SetUsage)
	case errors.Is(err, ErrUnknownCallback):
		slog.Warn("Ignoring unknown callback", "chat_id", chatID, "error", err)
		return nil
	default:
		return err
	}
}

func (b *Bot) handleSet(ctx context.Context, chatID int64, lang i18n.Language, table *i18n.Strings, set Set) error {
	if !b.registry.HasCategory(lang, set.Category) {
		return b.reply(ctx, chatID, table.InvalidCategory)
	}

	interval := time.Duration(set.Minutes) * time.Minute
	if _, err := b.jobs.Schedule(chatID, interval, b.firstDelay, set.Category); err != nil {
		return fmt.Errorf("failed to schedule auto-post: %w", err)
	}

	return b.reply(ctx, chatID, table.JobScheduledFor(set.Minutes, set.Category))
}

func (b *Bot) handleLanguage(ctx context.Context, chatID int64, lang i18n.Language) error {
	if err := b.preferences.Set(chatID, lang); err != nil {
		return err
	}

	table := b.catalog.MustGet(lang, b.fallback)
	return b.sendMenu(ctx, chatID, lang, table.LanguageSwitched)
}

func (b *Bot) sendMenu(ctx context.Context, chatID int64, lang i18n.Language, text string) error {
	table := b.catalog.MustGet(lang, b.fallback)

	categories, err := b.registry.AllCategories(lang)
	if err != nil {
		return err
	}

	return b.sender.SendWithKeyboard(ctx, chatID, feed.EscapeMarkdown(text), MenuKeyboard(categories, table, lang))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) error {
	return b.sender.Send(ctx, chatID, feed.EscapeMarkdown(text))
}
