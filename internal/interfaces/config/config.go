package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type FeedSource struct {
	Name string
	URL  string
}

// DefaultSources are seeded into an empty registry when no RSS_URL variables
// are set.
var DefaultSources = []FeedSource{
	{Name: "Google News - Tıp (TR)", URL: "https://news.google.com/rss/search?q=sağlık+tıp+hastane&hl=tr&gl=TR&ceid=TR:tr"},
	{Name: "ScienceDaily", URL: "https://www.sciencedaily.com/rss/health_medicine.xml"},
	{Name: "BBC Health", URL: "http://feeds.bbci.co.uk/news/health/rss.xml"},
}

type Config struct {
	DatabasePath string `envconfig:"DATABASE_PATH" default:"bulletin.db"`
	Storage      string `envconfig:"STORAGE" default:"sqlite"`
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":8080"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`

	// Minutes between scheduled cycles; zero or less disables scheduling.
	RefreshInterval int    `envconfig:"NEWS_REFRESH_INTERVAL" default:"30"`
	RetentionDays   int    `envconfig:"NEWS_RETENTION_DAYS" default:"7"`
	Notifications   bool   `envconfig:"NEWS_NOTIFICATIONS" default:"true"`
	UserSpecialty   string `envconfig:"USER_SPECIALTY" default:"Genel"`

	FetchTimeout       int  `envconfig:"FETCH_TIMEOUT" default:"15"`
	StartupDelay       int  `envconfig:"STARTUP_DELAY" default:"2"`
	SeedDefaultSources bool `envconfig:"SEED_DEFAULT_SOURCES" default:"true"`

	MisskeyHost    string `envconfig:"MISSKEY_HOST"`
	AuthToken      string `envconfig:"AUTH_TOKEN"`
	MaxPermits     int    `envconfig:"MAX_PERMITS" default:"3"`
	RefillInterval int    `envconfig:"REFILL_INTERVAL" default:"10"`
	LocalOnly      bool   `envconfig:"LOCAL_ONLY" default:"false"`
	NoteVisibility string `envconfig:"NOTE_VISIBILITY" default:"home"`

	MastodonServer       string `envconfig:"MASTODON_SERVER"`
	MastodonClientKey    string `envconfig:"MASTODON_CLIENT_KEY"`
	MastodonClientSecret string `envconfig:"MASTODON_CLIENT_SECRET"`
	MastodonAccessToken  string `envconfig:"MASTODON_ACCESS_TOKEN"`

	Sources []FeedSource `ignored:"true"`
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	if cfg.Storage != StorageSQLite && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("unsupported STORAGE %q: use %s or %s", cfg.Storage, StorageSQLite, StorageMemory)
	}
	if cfg.Storage == StorageSQLite && cfg.DatabasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH is required for sqlite storage")
	}

	cfg.Sources = loadFeedSources()
	if len(cfg.Sources) == 0 && cfg.SeedDefaultSources {
		cfg.Sources = DefaultSources
	}

	return &cfg, nil
}

// loadFeedSources reads RSS_URL_1, RSS_URL_2, ... up to the first gap, each
// with an optional RSS_URL_N_NAME. Without numbered variables it falls back
// to a comma-separated RSS_URL.
func loadFeedSources() []FeedSource {
	var sources []FeedSource

	for i := 1; ; i++ {
		key := fmt.Sprintf("RSS_URL_%d", i)
		u := strings.TrimSpace(os.Getenv(key))
		if u == "" {
			break
		}
		name := strings.TrimSpace(os.Getenv(key + "_NAME"))
		if name == "" {
			name = nameFromURL(u)
		}
		sources = append(sources, FeedSource{Name: name, URL: u})
	}

	if len(sources) > 0 {
		return sources
	}

	for _, u := range strings.Split(os.Getenv("RSS_URL"), ",") {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		sources = append(sources, FeedSource{Name: nameFromURL(u), URL: u})
	}
	return sources
}

func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func (c *Config) MisskeyEnabled() bool {
	return c.MisskeyHost != "" && c.AuthToken != ""
}

func (c *Config) MastodonEnabled() bool {
	return c.MastodonServer != "" && c.MastodonAccessToken != ""
}

func (c *Config) GetFetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Config) GetStartupDelay() time.Duration {
	return time.Duration(c.StartupDelay) * time.Second
}

func (c *Config) GetRefillInterval() time.Duration {
	return time.Duration(c.RefillInterval) * time.Second
}
