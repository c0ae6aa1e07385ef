package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/lysyi3m/news-bot/app/i18n"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/sources.yml
var defaultSources []byte

//go:embed defaults/locales.yml
var defaultLocales []byte

// Loader handles loading and validation of the sources and locales files.
// Empty paths select the embedded defaults.
type Loader struct {
	sourcesPath string
	localesPath string
}

// NewLoader creates a new configuration loader
func NewLoader(sourcesPath, localesPath string) *Loader {
	return &Loader{sourcesPath: sourcesPath, localesPath: localesPath}
}

// LoadSources loads and validates the feed registry configuration
func (l *Loader) LoadSources() (*Sources, error) {
	data, err := l.read(l.sourcesPath, defaultSources)
	if err != nil {
		return nil, err
	}

	var sources Sources
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	if err := validateSources(&sources); err != nil {
		return nil, fmt.Errorf("invalid sources config: %w", err)
	}

	slog.Debug("Sources loaded", "file", l.describe(l.sourcesPath), "languages", len(sources.Languages))

	return &sources, nil
}

// LoadLocales loads and validates the string tables
func (l *Loader) LoadLocales() (*Locales, error) {
	data, err := l.read(l.localesPath, defaultLocales)
	if err != nil {
		return nil, err
	}

	var locales Locales
	if err := yaml.Unmarshal(data, &locales); err != nil {
		return nil, fmt.Errorf("failed to parse locales YAML: %w", err)
	}

	setLocaleDefaults(&locales)

	if err := validateLocales(&locales); err != nil {
		return nil, fmt.Errorf("invalid locales config: %w", err)
	}

	slog.Debug("Locales loaded", "file", l.describe(l.localesPath), "languages", len(locales.Locales))

	return &locales, nil
}

func (l *Loader) read(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (l *Loader) describe(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// setLocaleDefaults fills strings a custom locales file may leave out
func setLocaleDefaults(locales *Locales) {
	for code, table := range locales.Locales {
		if table.ReadMore == "" {
			table.ReadMore = "Read more"
		}
		if table.Search.Language == "" {
			table.Search.Language = code
		}
		if table.Categories == nil {
			table.Categories = map[string]string{}
		}
		locales.Locales[code] = table
	}
}

func validateSources(sources *Sources) error {
	if sources.Prices != "" {
		if err := validateURL(sources.Prices); err != nil {
			return fmt.Errorf("prices: %w", err)
		}
	}

	if len(sources.Languages) == 0 {
		return fmt.Errorf("at least one language is required")
	}

	seenLanguages := make(map[string]bool)
	for i, lang := range sources.Languages {
		if !i18n.Language(lang.Code).Valid() {
			return fmt.Errorf("unsupported language at index %d: %q", i, lang.Code)
		}
		if seenLanguages[lang.Code] {
			return fmt.Errorf("duplicate language %q", lang.Code)
		}
		seenLanguages[lang.Code] = true

		if len(lang.Categories) == 0 {
			return fmt.Errorf("language %q must have at least one category", lang.Code)
		}

		seenCategories := make(map[string]bool)
		for j, category := range lang.Categories {
			if category.Key == "" {
				return fmt.Errorf("language %q: category key at index %d is required", lang.Code, j)
			}
			if seenCategories[category.Key] {
				return fmt.Errorf("language %q: duplicate category %q", lang.Code, category.Key)
			}
			seenCategories[category.Key] = true

			if len(category.Feeds) == 0 {
				return fmt.Errorf("language %q: category %q must have at least one feed", lang.Code, category.Key)
			}
			for _, feedURL := range category.Feeds {
				if err := validateURL(feedURL); err != nil {
					return fmt.Errorf("language %q: category %q: %w", lang.Code, category.Key, err)
				}
			}
		}
	}

	for _, lang := range i18n.Supported {
		if !seenLanguages[lang.String()] {
			return fmt.Errorf("missing sources for language %q", lang)
		}
	}

	return nil
}

func validateLocales(locales *Locales) error {
	for _, lang := range i18n.Supported {
		table, ok := locales.Locales[lang.String()]
		if !ok {
			return fmt.Errorf("missing string table for language %q", lang)
		}

		requiredStrings := map[string]string{
			"welcome":          table.Welcome,
			"menu_prompt":      table.MenuPrompt,
			"random_button":    table.RandomButton,
			"prices_button":    table.PricesButton,
			"global_button":    table.GlobalButton,
			"search_button":    table.SearchButton,
			"language_button":  table.LanguageLabel,
			"no_results":       table.NoResults,
			"connection_error": table.ConnectionError,
			"invalid_topic":    table.InvalidTopic,
			"set_usage":        table.SetUsage,
			"invalid_category": table.InvalidCategory,
			"job_scheduled":    table.JobScheduled,
		}

		for key, value := range requiredStrings {
			if value == "" {
				return fmt.Errorf("language %q: %s is required", lang, key)
			}
		}
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid feed URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid feed URL %q: absolute http(s) URL required", raw)
	}
	return nil
}
