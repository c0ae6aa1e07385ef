package dispatch

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lysyi3m/news-bot/app/feed"
	"github.com/lysyi3m/news-bot/app/i18n"
	"github.com/lysyi3m/news-bot/app/search"
)

var ErrEmptyQuery = errors.New("empty search query")

// Limits are the default item counts per request kind.
type Limits struct {
	Category  int
	Random    int
	Prices    int
	Search    int
	Headlines int
}

func DefaultLimits() Limits {
	return Limits{
		Category:  5,
		Random:    1,
		Prices:    5,
		Search:    5,
		Headlines: 5,
	}
}

// Plan is a resolved request. Exactly one of Addresses and Search is set.
type Plan struct {
	Kind      Kind
	Category  string
	Addresses []string
	Search    *search.Query
	Limit     int
}

type Registry interface {
	Resolve(lang i18n.Language, category string) ([]string, error)
	AllCategories(lang i18n.Language) ([]string, error)
	Prices() string
}

type Resolver struct {
	registry Registry
	catalog  i18n.Catalog
	fallback i18n.Language
	limits   Limits
	intn     func(n int) int
}

func NewResolver(registry Registry, catalog i18n.Catalog, fallback i18n.Language, limits Limits) *Resolver {
	defaults := DefaultLimits()
	if limits.Category <= 0 {
		limits.Category = defaults.Category
	}
	if limits.Random <= 0 {
		limits.Random = defaults.Random
	}
	if limits.Prices <= 0 {
		limits.Prices = defaults.Prices
	}
	if limits.Search <= 0 {
		limits.Search = defaults.Search
	}
	if limits.Headlines <= 0 {
		limits.Headlines = defaults.Headlines
	}

	return &Resolver{
		registry: registry,
		catalog:  catalog,
		fallback: fallback,
		limits:   limits,
		intn:     rand.IntN,
	}
}

func (r *Resolver) Resolve(req Request, lang i18n.Language) (*Plan, error) {
	switch req.Kind {
	case KindCategory:
		addresses, err := r.registry.Resolve(lang, req.Category)
		if err != nil {
			return nil, err
		}
		return &Plan{
			Kind:      KindCategory,
			Category:  req.Category,
			Addresses: addresses,
			Limit:     pickLimit(req.Limit, r.limits.Category),
		}, nil

	case KindRandom:
		return r.resolveRandom(req, lang)

	case KindPrices:
		address := r.registry.Prices()
		if address == "" {
			return nil, fmt.Errorf("%w: no prices feed configured", feed.ErrUnknownCategory)
		}
		return &Plan{
			Kind:      KindPrices,
			Addresses: []string{address},
			Limit:     pickLimit(req.Limit, r.limits.Prices),
		}, nil

	case KindSearch:
		text := strings.TrimSpace(req.Query)
		if text == "" {
			return nil, ErrEmptyQuery
		}
		limit := pickLimit(req.Limit, r.limits.Search)
		locale := r.catalog.MustGet(lang, r.fallback).Search
		return &Plan{
			Kind: KindSearch,
			Search: &search.Query{
				Text:     text,
				Country:  locale.Country,
				Language: locale.Language,
				PageSize: limit,
			},
			Limit: limit,
		}, nil

	case KindHeadlines:
		limit := pickLimit(req.Limit, r.limits.Headlines)
		locale := r.catalog.MustGet(lang, r.fallback).Search
		return &Plan{
			Kind: KindHeadlines,
			Search: &search.Query{
				Headlines: true,
				Country:   locale.Country,
				Language:  locale.Language,
				PageSize:  limit,
			},
			Limit: limit,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported request kind: %s", req.Kind)
	}
}

// resolveRandom draws a category uniformly, then one of its addresses
// uniformly. Both draws happen on every call.
func (r *Resolver) resolveRandom(req Request, lang i18n.Language) (*Plan, error) {
	categories, err := r.registry.AllCategories(lang)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories for language %q", feed.ErrUnknownCategory, lang)
	}

	category := categories[r.intn(len(categories))]

	addresses, err := r.registry.Resolve(lang, category)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("%w: %q has no feeds", feed.ErrUnknownCategory, category)
	}

	return &Plan{
		Kind:      KindRandom,
		Category:  category,
		Addresses: []string{addresses[r.intn(len(addresses))]},
		Limit:     pickLimit(req.Limit, r.limits.Random),
	}, nil
}

func pickLimit(requested, fallback int) int {
	if requested > 0 {
		return requested
	}
	return fallback
}
