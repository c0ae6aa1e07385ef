package config

import (
	"github.com/lysyi3m/news-bot/app/i18n"
)

// Catalog converts the loaded string tables into an i18n catalog
func (l *Locales) Catalog() i18n.Catalog {
	catalog := make(i18n.Catalog, len(l.Locales))
	for code, table := range l.Locales {
		s := table
		catalog[i18n.Language(code)] = &s
	}
	return catalog
}

// CategoryKeys returns the category keys of one language in configured order
func (ls *LanguageSources) CategoryKeys() []string {
	keys := make([]string, 0, len(ls.Categories))
	for _, c := range ls.Categories {
		keys = append(keys, c.Key)
	}
	return keys
}
