package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const defaultListingURL = "https://www.bbc.co.uk/learningenglish/english/features/6-minute-english"

type Config struct {
	//===============
	//  Feed
	//===============
	// The listing page enumerating episodes. Fixed per deployment.
	listingURL url.URL
	// Accepted release years as 4-digit strings. Empty means accept everything.
	acceptedYears []string

	//===============
	// Archive
	//===============
	// Root directory under which all collections live.
	archiveRoot string
	// Collection name used as a path segment and as the ledger file stem.
	collectionName string

	//===============
	// Politeness
	//===============
	// Maximum number of episode sub-flows processed concurrently;
	// it does not control OS threads or CPU parallelism.
	concurrency int
	// Randomized variation added on top of backoff delays.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string
}

type configDTO struct {
	ListingURL             string        `json:"listingUrl,omitempty"`
	AcceptedYears          []string      `json:"acceptedYears,omitempty"`
	ArchiveRoot            string        `json:"archiveRoot,omitempty"`
	CollectionName         string        `json:"collectionName,omitempty"`
	Concurrency            int           `json:"concurrency,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	// Start with default config
	builder := WithDefault()

	if dto.ListingURL != "" {
		parsed, err := url.Parse(dto.ListingURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: listingUrl: %s", ErrInvalidConfig, err.Error())
		}
		builder = builder.WithListingURL(*parsed)
	}

	// AcceptedYears can be empty - empty means no year filter
	if len(dto.AcceptedYears) > 0 {
		builder = builder.WithAcceptedYears(dto.AcceptedYears)
	}

	// For other fields, only override if non-zero value is provided
	if dto.ArchiveRoot != "" {
		builder = builder.WithArchiveRoot(dto.ArchiveRoot)
	}
	if dto.CollectionName != "" {
		builder = builder.WithCollectionName(dto.CollectionName)
	}
	if dto.Concurrency != 0 {
		builder = builder.WithConcurrency(dto.Concurrency)
	}
	if dto.Jitter != 0 {
		builder = builder.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		builder = builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempt != 0 {
		builder = builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffInitialDuration != 0 {
		builder = builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		builder = builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder = builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.Timeout != 0 {
		builder = builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	listing, _ := url.Parse(defaultListingURL)

	archiveRoot := "BBC_English_Podcast"
	if home, err := os.UserHomeDir(); err == nil {
		archiveRoot = filepath.Join(home, "Documents", "BBC_English_Podcast")
	}

	defaultConfig := Config{
		listingURL:             *listing,
		acceptedYears:          nil,
		archiveRoot:            archiveRoot,
		collectionName:         "SixMinuteEnglish",
		concurrency:            4,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		timeout:                time.Second * 30,
		userAgent:              "bbc-podcast-spider/1.0",
	}
	return &defaultConfig
}

func (c *Config) WithListingURL(u url.URL) *Config {
	c.listingURL = u
	return c
}

func (c *Config) WithAcceptedYears(years []string) *Config {
	c.acceptedYears = years
	return c
}

func (c *Config) WithArchiveRoot(root string) *Config {
	c.archiveRoot = root
	return c
}

func (c *Config) WithCollectionName(name string) *Config {
	c.collectionName = name
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) Build() (Config, error) {
	if c.listingURL.Host == "" {
		return Config{}, fmt.Errorf("%w: listingUrl must be absolute", ErrInvalidConfig)
	}
	if c.collectionName == "" {
		return Config{}, fmt.Errorf("%w: collectionName cannot be empty", ErrInvalidConfig)
	}
	if c.archiveRoot == "" {
		return Config{}, fmt.Errorf("%w: archiveRoot cannot be empty", ErrInvalidConfig)
	}
	for _, year := range c.acceptedYears {
		if len(year) != 4 {
			return Config{}, fmt.Errorf("%w: year %q is not a 4-digit year", ErrInvalidConfig, year)
		}
		for _, r := range year {
			if r < '0' || r > '9' {
				return Config{}, fmt.Errorf("%w: year %q is not a 4-digit year", ErrInvalidConfig, year)
			}
		}
	}

	return *c, nil
}

func (c Config) ListingURL() url.URL {
	return c.listingURL
}

func (c Config) AcceptedYears() []string {
	years := make([]string, len(c.acceptedYears))
	copy(years, c.acceptedYears)
	return years
}

func (c Config) ArchiveRoot() string {
	return c.archiveRoot
}

func (c Config) CollectionName() string {
	return c.collectionName
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}
