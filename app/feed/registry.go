package feed

import (
	"fmt"
	"slices"

	"github.com/lysyi3m/news-bot/app/config"
	"github.com/lysyi3m/news-bot/app/i18n"
)

type categoryTable struct {
	order []string
	feeds map[string][]string
}

// Registry maps (language, category) to feed addresses. It is built once at
// startup and never mutated, so it is safe for concurrent use.
type Registry struct {
	prices    string
	languages []i18n.Language
	tables    map[i18n.Language]*categoryTable
}

func NewRegistry(sources *config.Sources) *Registry {
	r := &Registry{
		prices: sources.Prices,
		tables: make(map[i18n.Language]*categoryTable, len(sources.Languages)),
	}

	for _, ls := range sources.Languages {
		lang := i18n.Language(ls.Code)
		table := &categoryTable{
			order: ls.CategoryKeys(),
			feeds: make(map[string][]string, len(ls.Categories)),
		}
		for _, c := range ls.Categories {
			table.feeds[c.Key] = slices.Clone(c.Feeds)
		}
		r.tables[lang] = table
		r.languages = append(r.languages, lang)
	}

	return r
}

// Resolve returns the feed addresses of a category in configured order.
func (r *Registry) Resolve(lang i18n.Language, category string) ([]string, error) {
	table, err := r.table(lang)
	if err != nil {
		return nil, err
	}

	feeds, ok := table.feeds[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q for language %q", ErrUnknownCategory, category, lang)
	}

	return slices.Clone(feeds), nil
}

// AllCategories returns the category keys of a language in configured order.
func (r *Registry) AllCategories(lang i18n.Language) ([]string, error) {
	table, err := r.table(lang)
	if err != nil {
		return nil, err
	}
	return slices.Clone(table.order), nil
}

func (r *Registry) HasCategory(lang i18n.Language, category string) bool {
	_, err := r.Resolve(lang, category)
	return err == nil
}

func (r *Registry) Prices() string {
	return r.prices
}

func (r *Registry) Languages() []i18n.Language {
	return slices.Clone(r.languages)
}

func (r *Registry) table(lang i18n.Language) (*categoryTable, error) {
	table, ok := r.tables[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return table, nil
}
