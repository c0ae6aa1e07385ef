package i18n

import (
	"fmt"
)

// SearchLocale is the locale hint passed to the news search service.
type SearchLocale struct {
	Country  string `yaml:"country"`
	Language string `yaml:"language"`
}

// Strings is the string table of one display language.
type Strings struct {
	Welcome       string            `yaml:"welcome"`
	Help          string            `yaml:"help"`
	MenuPrompt    string            `yaml:"menu_prompt"`
	Categories    map[string]string `yaml:"categories"`
	RandomButton  string            `yaml:"random_button"`
	PricesButton  string            `yaml:"prices_button"`
	GlobalButton  string            `yaml:"global_button"`
	SearchButton  string            `yaml:"search_button"`
	LanguageLabel string            `yaml:"language_button"`

	ReadMore        string `yaml:"read_more"`
	PricesLabel     string `yaml:"prices_label"`
	SearchLabel     string `yaml:"search_label"`
	NoResults       string `yaml:"no_results"`
	ConnectionError string `yaml:"connection_error"`
	InvalidTopic    string `yaml:"invalid_topic"`
	SearchPrompt    string `yaml:"search_prompt"`

	SetUsage         string `yaml:"set_usage"`
	InvalidCategory  string `yaml:"invalid_category"`
	JobScheduled     string `yaml:"job_scheduled"`
	JobCancelled     string `yaml:"job_cancelled"`
	NoJob            string `yaml:"no_job"`
	LanguageSwitched string `yaml:"language_switched"`
	LanguageUsage    string `yaml:"language_usage"`

	Search SearchLocale `yaml:"search"`
}

// CategoryName returns the display name of a category, falling back to the key.
func (s *Strings) CategoryName(key string) string {
	if name, ok := s.Categories[key]; ok && name != "" {
		return name
	}
	return key
}

func (s *Strings) WelcomeFor(firstName string) string {
	return fmt.Sprintf(s.Welcome, firstName)
}

func (s *Strings) JobScheduledFor(minutes int, category string) string {
	return fmt.Sprintf(s.JobScheduled, minutes, s.CategoryName(category))
}

// Catalog holds the string tables of every supported language.
type Catalog map[Language]*Strings

func (c Catalog) Get(lang Language) (*Strings, error) {
	s, ok := c[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return s, nil
}

// MustGet returns the table for lang, or the table of fallback when lang has none.
func (c Catalog) MustGet(lang, fallback Language) *Strings {
	if s, ok := c[lang]; ok {
		return s
	}
	s, ok := c[fallback]
	if !ok {
		panic(fmt.Sprintf("no strings for fallback language %q", fallback))
	}
	return s
}
