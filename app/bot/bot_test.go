package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/news-bot/app/config"
	"github.com/lysyi3m/news-bot/app/dispatch"
	"github.com/lysyi3m/news-bot/app/feed"
	"github.com/lysyi3m/news-bot/app/i18n"
	"github.com/lysyi3m/news-bot/app/tasks"
)

type fakeAPI struct {
	mu      sync.Mutex
	calls   []string
	sent    []tgbotapi.MessageConfig
	updates chan tgbotapi.Update
	sendErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}

	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	f.calls = append(f.calls, "send")
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.calls = append(f.calls, "callback:"+cb.CallbackQueryID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type fakeHandler struct {
	api      *fakeAPI
	requests []dispatch.Request
}

func (h *fakeHandler) Handle(ctx context.Context, chatID int64, req dispatch.Request) error {
	h.api.record("handle")
	h.requests = append(h.requests, req)
	return nil
}

type scheduledJob struct {
	chatID   int64
	interval time.Duration
	category string
}

type fakeJobs struct {
	scheduled []scheduledJob
	active    map[int64]bool
}

func (j *fakeJobs) Schedule(chatID int64, interval, firstDelay time.Duration, category string) (tasks.Job, error) {
	j.scheduled = append(j.scheduled, scheduledJob{chatID: chatID, interval: interval, category: category})
	if j.active == nil {
		j.active = make(map[int64]bool)
	}
	j.active[chatID] = true
	return tasks.Job{ChatID: chatID, Category: category, Interval: interval}, nil
}

func (j *fakeJobs) Cancel(chatID int64) bool {
	if !j.active[chatID] {
		return false
	}
	delete(j.active, chatID)
	return true
}

func testRegistry(aiFeed string) *feed.Registry {
	return feed.NewRegistry(&config.Sources{
		Languages: []config.LanguageSources{
			{
				Code: "en",
				Categories: []config.CategorySource{
					{Key: "ai", Feeds: []string{aiFeed}},
					{Key: "tech", Feeds: []string{"http://t/feed"}},
					{Key: "sport", Feeds: []string{"http://s/feed"}},
				},
			},
			{
				Code: "fa",
				Categories: []config.CategorySource{
					{Key: "ai", Feeds: []string{"http://fa/feed"}},
				},
			},
		},
	})
}

func testCatalog() i18n.Catalog {
	return i18n.Catalog{
		i18n.English: &i18n.Strings{
			Welcome:          "Hi %s!",
			Help:             "Commands",
			MenuPrompt:       "Choose an option:",
			Categories:       map[string]string{"ai": "AI News", "tech": "Tech"},
			RandomButton:     "Random",
			PricesButton:     "Prices",
			GlobalButton:     "World",
			SearchButton:     "Search",
			LanguageLabel:    "فارسی",
			ReadMore:         "Read more",
			NoResults:        "No results found.",
			ConnectionError:  "Connection error.",
			InvalidTopic:     "Category not found.",
			SearchPrompt:     "Send a topic.",
			SetUsage:         "Usage: /set <minutes> <category>",
			InvalidCategory:  "Invalid category.",
			JobScheduled:     "Every %d minutes: %s",
			JobCancelled:     "Stopped.",
			NoJob:            "No job.",
			LanguageSwitched: "Language switched to English.",
			LanguageUsage:    "Usage: /lang <fa|en>",
		},
		i18n.Persian: &i18n.Strings{
			Welcome:          "سلام %s",
			MenuPrompt:       "انتخاب کن",
			Categories:       map[string]string{"ai": "هوش مصنوعی"},
			LanguageLabel:    "English",
			ReadMore:         "ادامه مطلب",
			SetUsage:         "استفاده",
			InvalidCategory:  "دسته‌بندی نامعتبر است.",
			LanguageSwitched: "زبان به فارسی تغییر کرد.",
		},
	}
}

type testBot struct {
	bot         *Bot
	api         *fakeAPI
	handler     *fakeHandler
	jobs        *fakeJobs
	preferences *i18n.Preferences
}

func newTestBot() *testBot {
	api := newFakeAPI()
	handler := &fakeHandler{api: api}
	jobs := &fakeJobs{}
	preferences := i18n.NewPreferences(i18n.English)

	return &testBot{
		bot:         New(api, handler, jobs, testRegistry("http://a/feed"), preferences, testCatalog(), i18n.English, time.Second),
		api:         api,
		handler:     handler,
		jobs:        jobs,
		preferences: preferences,
	}
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	command := strings.Fields(text)[0]
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{ID: chatID, FirstName: "Sara"},
			Text: text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
		},
	}
}

func callbackUpdate(chatID int64, id, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      id,
			From:    &tgbotapi.User{ID: chatID},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
			Data:    data,
		},
	}
}

func (tb *testBot) handle(t *testing.T, update tgbotapi.Update) {
	t.Helper()

	event, ok := ParseUpdate(update)
	if !ok {
		t.Fatal("Expected update to produce an event")
	}
	if err := tb.bot.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

func TestSetNonNumericSendsUsage(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, commandUpdate(1, "/set abc ai"))

	sent := tb.api.messages()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 message, got: %d", len(sent))
	}
	if sent[0].Text != feed.EscapeMarkdown("Usage: /set <minutes> <category>") {
		t.Errorf("Expected usage message, got: %s", sent[0].Text)
	}
	if len(tb.jobs.scheduled) != 0 {
		t.Errorf("Expected no job, got: %+v", tb.jobs.scheduled)
	}
}

func TestSetOversizedIntervalSendsUsage(t *testing.T) {
	for _, text := range []string{"/set 3749353613647811 ai", "/set 200000000 ai"} {
		tb := newTestBot()

		tb.handle(t, commandUpdate(1, text))

		sent := tb.api.messages()
		if len(sent) != 1 || sent[0].Text != feed.EscapeMarkdown("Usage: /set <minutes> <category>") {
			t.Errorf("Expected one usage message for %q, got: %+v", text, sent)
		}
		if len(tb.jobs.scheduled) != 0 {
			t.Errorf("Expected no job for %q, got: %+v", text, tb.jobs.scheduled)
		}
	}
}

func TestSetSchedulesJob(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, commandUpdate(1, "/set 30 ai"))

	if len(tb.jobs.scheduled) != 1 {
		t.Fatalf("Expected 1 job, got: %d", len(tb.jobs.scheduled))
	}
	job := tb.jobs.scheduled[0]
	if job.chatID != 1 || job.interval != 30*time.Minute || job.category != "ai" {
		t.Errorf("Unexpected job: %+v", job)
	}

	sent := tb.api.messages()
	if len(sent) != 1 || sent[0].Text != feed.EscapeMarkdown("Every 30 minutes: AI News") {
		t.Errorf("Unexpected confirmation: %+v", sent)
	}
	if sent[0].ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("Expected MarkdownV2, got: %s", sent[0].ParseMode)
	}
}

func TestSetUnknownCategory(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, commandUpdate(1, "/set 30 foo"))

	if len(tb.jobs.scheduled) != 0 {
		t.Errorf("Expected no job, got: %+v", tb.jobs.scheduled)
	}
	sent := tb.api.messages()
	if len(sent) != 1 || sent[0].Text != feed.EscapeMarkdown("Invalid category.") {
		t.Errorf("Expected invalid category message, got: %+v", sent)
	}
}

func TestStop(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, commandUpdate(1, "/stop"))
	tb.handle(t, commandUpdate(1, "/set 10 tech"))
	tb.handle(t, commandUpdate(1, "/stop"))

	sent := tb.api.messages()
	if len(sent) != 3 {
		t.Fatalf("Expected 3 messages, got: %d", len(sent))
	}
	if sent[0].Text != feed.EscapeMarkdown("No job.") {
		t.Errorf("Expected no-job message, got: %s", sent[0].Text)
	}
	if sent[2].Text != feed.EscapeMarkdown("Stopped.") {
		t.Errorf("Expected cancelled message, got: %s", sent[2].Text)
	}
}

func TestStartSendsMenu(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, commandUpdate(1, "/start"))

	sent := tb.api.messages()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 message, got: %d", len(sent))
	}
	if sent[0].Text != feed.EscapeMarkdown("Hi Sara!") {
		t.Errorf("Expected greeting, got: %s", sent[0].Text)
	}

	keyboard, ok := sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("Expected inline keyboard, got: %T", sent[0].ReplyMarkup)
	}

	first := keyboard.InlineKeyboard[0]
	if len(first) != 2 || *first[0].CallbackData != "cat:ai" || *first[1].CallbackData != "cat:tech" {
		t.Errorf("Expected categories in registry order, got: %+v", first)
	}
	if first[0].Text != "AI News" {
		t.Errorf("Expected localized category name, got: %s", first[0].Text)
	}

	last := keyboard.InlineKeyboard[len(keyboard.InlineKeyboard)-1]
	if *last[0].CallbackData != "lang:fa" {
		t.Errorf("Expected language toggle to fa, got: %s", *last[0].CallbackData)
	}
}

func TestCallbackAnsweredBeforeDispatch(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, callbackUpdate(1, "cb-1", "cat:ai"))

	if len(tb.api.calls) != 2 || tb.api.calls[0] != "callback:cb-1" || tb.api.calls[1] != "handle" {
		t.Errorf("Expected callback answer before dispatch, got: %v", tb.api.calls)
	}
	if len(tb.handler.requests) != 1 || tb.handler.requests[0] != dispatch.CategoryRequest("ai") {
		t.Errorf("Unexpected requests: %+v", tb.handler.requests)
	}
}

func TestFreeTextSearches(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, tgbotapi.Update{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "Bitcoin"},
	})

	if len(tb.handler.requests) != 1 || tb.handler.requests[0] != dispatch.SearchRequest("Bitcoin") {
		t.Errorf("Expected search request, got: %+v", tb.handler.requests)
	}
}

func TestLanguageSwitch(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, callbackUpdate(1, "cb-1", "lang:fa"))

	if got := tb.preferences.Get(1); got != i18n.Persian {
		t.Errorf("Expected fa, got: %s", got)
	}

	sent := tb.api.messages()
	if len(sent) != 1 || sent[0].Text != feed.EscapeMarkdown("زبان به فارسی تغییر کرد.") {
		t.Fatalf("Expected Persian confirmation, got: %+v", sent)
	}

	keyboard := sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if keyboard.InlineKeyboard[0][0].Text != "هوش مصنوعی" {
		t.Errorf("Expected Persian menu, got: %s", keyboard.InlineKeyboard[0][0].Text)
	}
}

func TestLangCommandUsage(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, commandUpdate(1, "/lang de"))

	sent := tb.api.messages()
	if len(sent) != 1 || sent[0].Text != feed.EscapeMarkdown("Usage: /lang <fa|en>") {
		t.Errorf("Expected language usage, got: %+v", sent)
	}
	if tb.preferences.Get(1) != i18n.English {
		t.Error("Expected language to be unchanged")
	}
}

func TestUnknownCallbackIgnored(t *testing.T) {
	tb := newTestBot()

	tb.handle(t, callbackUpdate(1, "cb-1", "bogus"))

	if len(tb.api.messages()) != 0 {
		t.Error("Expected no messages for unknown callback")
	}
}

func TestSendFailureIsReturned(t *testing.T) {
	tb := newTestBot()
	tb.api.sendErr = errors.New("telegram down")

	event, _ := ParseUpdate(commandUpdate(1, "/help"))
	if err := tb.bot.HandleEvent(context.Background(), event); err == nil {
		t.Error("Expected send error")
	}
}

func TestRunEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>AI</title>
<item><title>First</title><link>http://a/1</link></item>
<item><title>Second</title><link>http://a/2</link></item>
</channel></rss>`)
	}))
	defer server.Close()

	api := newFakeAPI()
	registry := testRegistry(server.URL)
	catalog := testCatalog()
	preferences := i18n.NewPreferences(i18n.English)
	sender := NewSender(api)

	resolver := dispatch.NewResolver(registry, catalog, i18n.English, dispatch.DefaultLimits())
	service := dispatch.NewService(
		resolver,
		feed.NewFetcher(server.Client(), "news-bot-test", time.Second),
		feed.NewParser(),
		feed.NewFormatter(catalog, i18n.English, 0),
		nil,
		sender,
		preferences,
		catalog,
		i18n.English,
		nil,
		time.Second,
	)

	b := New(api, service, &fakeJobs{}, registry, preferences, catalog, i18n.English, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	api.updates <- callbackUpdate(7, "cb-1", "cat:ai")
	close(api.updates)
	<-done
	b.Stop()
	cancel()

	sent := api.messages()
	if len(sent) != 2 {
		t.Fatalf("Expected 2 messages, got: %d", len(sent))
	}

	for i, title := range []string{"First", "Second"} {
		want := fmt.Sprintf("*%s*\n\n[Read more · AI News](http://a/%d)", title, i+1)
		if sent[i].Text != want {
			t.Errorf("Expected message %d to be %q, got: %q", i, want, sent[i].Text)
		}
		if sent[i].ChatID != 7 {
			t.Errorf("Expected chat 7, got: %d", sent[i].ChatID)
		}
	}
}
