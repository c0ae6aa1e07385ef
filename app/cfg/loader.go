package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Credentials
	TelegramToken string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token (required)" required:"true"`
	NewsAPIKey    string `long:"news-api-key" env:"NEWS_API_KEY" description:"News search API key (required)" required:"true"`
	NewsAPIURL    string `long:"news-api-url" env:"NEWS_API_URL" default:"https://newsapi.org/v2" description:"Base URL of the news search API"`

	// Sources and strings
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" description:"YAML file with feed sources (embedded defaults when empty)"`
	LocalesFile string `long:"locales-file" env:"LOCALES_FILE" description:"YAML file with localized strings (embedded defaults when empty)"`

	// Storage and HTTP API
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./data/news-bot.db" description:"SQLite database file for the delivery log"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP status server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Pipeline settings
	FetchTimeout       int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Feed fetch timeout in seconds"`
	SearchTimeout      int    `long:"search-timeout" env:"SEARCH_TIMEOUT" default:"10" description:"News search timeout in seconds"`
	DefaultLimit       int    `long:"default-limit" env:"DEFAULT_LIMIT" default:"5" description:"Items sent per category request"`
	DescriptionLimit   int    `long:"description-limit" env:"DESCRIPTION_LIMIT" default:"150" description:"Maximum description length in characters"`
	DefaultLanguage    string `long:"default-language" env:"DEFAULT_LANGUAGE" default:"fa" description:"Language assigned to a chat on first contact"`
	WorkerCount        int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for auto-post tasks"`
	AutoPostFirstDelay int    `long:"autopost-first-delay" env:"AUTOPOST_FIRST_DELAY" default:"10" description:"Delay in seconds before the first auto-post"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsBot/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Tehran)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		TelegramToken:      raw.TelegramToken,
		NewsAPIKey:         raw.NewsAPIKey,
		NewsAPIURL:         raw.NewsAPIURL,
		SourcesFile:        raw.SourcesFile,
		LocalesFile:        raw.LocalesFile,
		DBPath:             raw.DBPath,
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		FetchTimeout:       raw.FetchTimeout,
		SearchTimeout:      raw.SearchTimeout,
		DefaultLimit:       raw.DefaultLimit,
		DescriptionLimit:   raw.DescriptionLimit,
		DefaultLanguage:    raw.DefaultLanguage,
		WorkerCount:        raw.WorkerCount,
		AutoPostFirstDelay: raw.AutoPostFirstDelay,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) GetFetchTimeout() time.Duration {
	if c.FetchTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) GetSearchTimeout() time.Duration {
	if c.SearchTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.SearchTimeout) * time.Second
}

func (c *Cfg) GetAutoPostFirstDelay() time.Duration {
	if c.AutoPostFirstDelay < 0 {
		return 0
	}
	return time.Duration(c.AutoPostFirstDelay) * time.Second
}

func validate(c *Cfg) error {
	requiredFields := map[string]string{
		"telegram token": c.TelegramToken,
		"news API key":   c.NewsAPIKey,
	}

	for fieldName, fieldValue := range requiredFields {
		if strings.TrimSpace(fieldValue) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"fetch timeout":        c.FetchTimeout,
		"search timeout":       c.SearchTimeout,
		"default limit":        c.DefaultLimit,
		"description limit":    c.DescriptionLimit,
		"autopost first delay": c.AutoPostFirstDelay,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
