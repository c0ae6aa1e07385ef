package cfg

type Cfg struct {
	// Credentials
	TelegramToken string
	NewsAPIKey    string
	NewsAPIURL    string

	// Sources and strings
	SourcesFile string
	LocalesFile string

	// Storage and HTTP API
	DBPath       string
	Port         string
	APIAccessKey string

	// Pipeline settings
	FetchTimeout       int
	SearchTimeout      int
	DefaultLimit       int
	DescriptionLimit   int
	DefaultLanguage    string
	WorkerCount        int
	AutoPostFirstDelay int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
