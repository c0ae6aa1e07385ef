package database

import (
	"time"
)

// Delivery is one item sent to a chat
type Delivery struct {
	ID          int64
	ChatID      int64
	Kind        string // category, random, prices, search, headlines
	Category    string
	Language    string
	Title       string
	Link        string
	ContentHash string
	SentAt      time.Time
}

type KindCount struct {
	Kind  string
	Count int
}

type Stats struct {
	Total      int
	Chats      int
	ByKind     []KindCount
	LastSentAt *time.Time
}
