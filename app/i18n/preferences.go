package i18n

import (
	"sync"
)

// Preferences maps chat IDs to their display language. Entries live for the
// lifetime of the process only.
type Preferences struct {
	fallback Language
	chats    map[int64]Language
	mu       sync.RWMutex
}

func NewPreferences(fallback Language) *Preferences {
	if !fallback.Valid() {
		fallback = Persian
	}
	return &Preferences{
		fallback: fallback,
		chats:    make(map[int64]Language),
	}
}

// Get returns the chat's language, or the fallback on first contact.
func (p *Preferences) Get(chatID int64) Language {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if lang, ok := p.chats[chatID]; ok {
		return lang
	}
	return p.fallback
}

func (p *Preferences) Set(chatID int64, lang Language) error {
	if !lang.Valid() {
		return ErrUnknownLanguage
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.chats[chatID] = lang

	return nil
}

func (p *Preferences) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.chats)
}

// CountByLanguage reports how many chats chose each language explicitly.
func (p *Preferences) CountByLanguage() map[Language]int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	counts := make(map[Language]int, len(Supported))
	for _, lang := range p.chats {
		counts[lang]++
	}
	return counts
}
