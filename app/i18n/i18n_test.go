package i18n

import (
	"errors"
	"sync"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input   string
		want    Language
		wantErr bool
	}{
		{"fa", Persian, false},
		{"en", English, false},
		{"en-US", English, false},
		{"fa_IR", Persian, false},
		{" EN ", English, false},
		{"de", "", true},
		{"", "", true},
		{"not a tag", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLanguage(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %q", tt.input, got)
				}
				if !errors.Is(err, ErrUnknownLanguage) {
					t.Errorf("Expected ErrUnknownLanguage, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLanguageOther(t *testing.T) {
	if Persian.Other() != English {
		t.Errorf("Expected fa to toggle to en")
	}
	if English.Other() != Persian {
		t.Errorf("Expected en to toggle to fa")
	}
}

func TestPreferencesDefaultAndSet(t *testing.T) {
	prefs := NewPreferences(Persian)

	if got := prefs.Get(42); got != Persian {
		t.Errorf("Expected default language fa, got %q", got)
	}

	if err := prefs.Set(42, English); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := prefs.Get(42); got != English {
		t.Errorf("Expected en after Set, got %q", got)
	}
	if got := prefs.Get(43); got != Persian {
		t.Errorf("Expected other chats to keep the default, got %q", got)
	}
	if prefs.Count() != 1 {
		t.Errorf("Expected 1 stored preference, got %d", prefs.Count())
	}

	if err := prefs.Set(42, Language("de")); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("Expected ErrUnknownLanguage, got: %v", err)
	}
	if got := prefs.Get(42); got != English {
		t.Errorf("Expected rejected Set to leave en in place, got %q", got)
	}
}

func TestPreferencesInvalidFallback(t *testing.T) {
	prefs := NewPreferences(Language("xx"))
	if got := prefs.Get(1); got != Persian {
		t.Errorf("Expected invalid fallback to become fa, got %q", got)
	}
}

func TestPreferencesConcurrentAccess(t *testing.T) {
	prefs := NewPreferences(Persian)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			lang := Supported[chatID%2]
			for j := 0; j < 100; j++ {
				_ = prefs.Set(chatID, lang)
				if got := prefs.Get(chatID); got != lang {
					t.Errorf("chat %d: expected %q, got %q", chatID, lang, got)
					return
				}
			}
		}(int64(i))
	}
	wg.Wait()

	counts := prefs.CountByLanguage()
	if counts[Persian] != 25 || counts[English] != 25 {
		t.Errorf("Expected 25/25 split, got %v", counts)
	}
}

func TestCatalog(t *testing.T) {
	catalog := Catalog{
		English: &Strings{
			ReadMore:     "Read more",
			Categories:   map[string]string{"ai": "AI News"},
			Welcome:      "Hello %s!",
			JobScheduled: "Every %d minutes: %s",
		},
	}

	s, err := catalog.Get(English)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if s.CategoryName("ai") != "AI News" {
		t.Errorf("Expected 'AI News', got '%s'", s.CategoryName("ai"))
	}
	if s.CategoryName("tech") != "tech" {
		t.Errorf("Expected key fallback 'tech', got '%s'", s.CategoryName("tech"))
	}
	if s.WelcomeFor("Sara") != "Hello Sara!" {
		t.Errorf("Unexpected welcome: %s", s.WelcomeFor("Sara"))
	}
	if s.JobScheduledFor(15, "ai") != "Every 15 minutes: AI News" {
		t.Errorf("Unexpected job message: %s", s.JobScheduledFor(15, "ai"))
	}

	if _, err := catalog.Get(Persian); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("Expected ErrUnknownLanguage, got: %v", err)
	}
	if catalog.MustGet(Persian, English) != s {
		t.Error("Expected MustGet to fall back to the English table")
	}
}
