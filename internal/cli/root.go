package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/config"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/scheduler"
)

var (
	cfgFile        string
	listingURL     string
	years          []string
	archiveRoot    string
	collectionName string
	concurrency    int
	timeout        time.Duration
	userAgent      string
	maxAttempt     int
	randomSeed     int64
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bbcspider",
	Short: "An incremental archiver for the BBC Learning English podcast feed.",
	Long: `bbcspider walks the 6 Minute English listing page, filters episodes by
release year, fetches each episode's detail page, downloads the PDF transcript
and MP3 audio that are not already archived, and appends every processed
episode to an append-only xlsx ledger alongside run statistics.

Re-running over the same backlog is cheap: assets already present on disk are
skipped by a filesystem probe, never re-downloaded.`,
	RunE: func(command *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		printBanner(cfg)

		logLevel := slog.LevelWarn
		if verbose {
			logLevel = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
		recorder := metadata.NewRecorder("run-coordinator", logger)

		// Interrupt stops admission of new episode sub-flows; in-flight work
		// drains, the ledger closes, and a partial summary still prints.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runScheduler := scheduler.NewScheduler(cfg, &recorder, &recorder)
		execution, runErr := runScheduler.ExecuteRun(ctx, cfg)

		printSummary(runScheduler.Stats(), execution.LedgerPath)

		if runErr != nil {
			return fmt.Errorf("run failed: %w", runErr)
		}
		return nil
	},
}

func printBanner(cfg config.Config) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("🎧 Welcome to BBC Learning English - 6 Minute English Spider")
	fmt.Println("This spider extracts podcast metadata (number, title, audio, pdf, date).")
	if len(cfg.AcceptedYears()) > 0 {
		fmt.Printf("📌 Filtering podcasts for years: %s\n", strings.Join(cfg.AcceptedYears(), ", "))
	} else {
		fmt.Println("⚠ No year filter applied, scraping all available podcasts.")
	}
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

func printSummary(stats *scheduler.RunStats, ledgerPath string) {
	summary := stats.Snapshot()

	if ledgerPath != "" {
		fmt.Printf("\nLedger saved at %s\n", ledgerPath)
	}
	fmt.Println("==== Crawl Summary ====")
	fmt.Printf("Total requests sent: %d\n", summary.RequestsSent)
	fmt.Printf("Episodes scheduled: %d\n", summary.EpisodesScheduled)
	fmt.Printf("Episodes fetched: %d\n", summary.EpisodesFetched)
	fmt.Printf("Items recorded (ledger rows): %d\n", summary.ItemsRecorded)
	fmt.Printf("PDFs downloaded: %d (skipped: %d)\n", summary.PdfDownloaded, summary.PdfSkipped)
	fmt.Printf("MP3s downloaded: %d (skipped: %d)\n", summary.AudioDownloaded, summary.AudioSkipped)
	fmt.Println("========================")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&listingURL, "listing-url", "", "listing page URL to walk")
	rootCmd.PersistentFlags().StringArrayVar(&years, "year", []string{}, "accepted release year, 4 digits (can be repeated; none means all years)")
	rootCmd.PersistentFlags().StringVar(&archiveRoot, "archive-root", "", "root directory of the archive")
	rootCmd.PersistentFlags().StringVar(&collectionName, "collection", "", "collection name used as a path segment and ledger file stem")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent episode workers")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "maximum fetch attempts per request")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for backoff jitter (0 for current time)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log every fetch and artifact event")
}

// InitConfigWithError reads in the config file if set, then applies flag
// overrides, returning any errors. This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	var builder *config.Config

	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		builder = &cfg
	} else {
		builder = config.WithDefault()
	}

	// CLI flags override file values where provided
	if listingURL != "" {
		parsed, err := url.Parse(listingURL)
		if err != nil {
			return config.Config{}, fmt.Errorf("error parsing listing URL %s: %w", listingURL, err)
		}
		builder = builder.WithListingURL(*parsed)
	}

	if len(years) > 0 {
		builder = builder.WithAcceptedYears(normalizeYears(years))
	}

	if archiveRoot != "" {
		builder = builder.WithArchiveRoot(archiveRoot)
	}

	if collectionName != "" {
		builder = builder.WithCollectionName(collectionName)
	}

	if concurrency > 0 {
		builder = builder.WithConcurrency(concurrency)
	}

	if timeout > 0 {
		builder = builder.WithTimeout(timeout)
	}

	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}

	if maxAttempt > 0 {
		builder = builder.WithMaxAttempt(maxAttempt)
	}

	if randomSeed != 0 {
		builder = builder.WithRandomSeed(randomSeed)
	}

	return builder.Build()
}

// normalizeYears trims whitespace and drops empty entries, so
// --year " 2023" and a comma-split config value behave the same.
func normalizeYears(raw []string) []string {
	var normalized []string
	for _, year := range raw {
		year = strings.TrimSpace(year)
		if year != "" {
			normalized = append(normalized, year)
		}
	}
	return normalized
}

func ResetFlags() {
	cfgFile = ""
	listingURL = ""
	years = []string{}
	archiveRoot = ""
	collectionName = ""
	concurrency = 0
	timeout = 0
	userAgent = ""
	maxAttempt = 0
	randomSeed = 0
	verbose = false
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetListingURLForTest(u string) {
	listingURL = u
}

func SetYearsForTest(y []string) {
	years = y
}

func SetArchiveRootForTest(root string) {
	archiveRoot = root
}

func SetCollectionNameForTest(name string) {
	collectionName = name
}

func SetConcurrencyForTest(c int) {
	concurrency = c
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}
