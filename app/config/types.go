package config

import "github.com/lysyi3m/news-bot/app/i18n"

// Sources is the complete feed registry configuration
type Sources struct {
	Prices    string            `yaml:"prices"`
	Languages []LanguageSources `yaml:"languages"`
}

// LanguageSources lists the categories configured for one language
type LanguageSources struct {
	Code       string           `yaml:"code"`
	Categories []CategorySource `yaml:"categories"`
}

// CategorySource binds a category key to its feed addresses
type CategorySource struct {
	Key   string   `yaml:"key"`
	Feeds []string `yaml:"feeds"`
}

// Locales holds the string tables keyed by language code
type Locales struct {
	Locales map[string]i18n.Strings `yaml:"locales"`
}
