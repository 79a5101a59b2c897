package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"icity-exporter/config"
	"icity-exporter/models"
	"icity-exporter/scraper/icity"
	"icity-exporter/services"
	"icity-exporter/storage"
	"icity-exporter/utils"
)

var (
	flagUsername   string
	flagPassword   string
	flagTargetUser string
	flagOutputDir  string
	flagPrefix     string
	flagMaxPages   int
	flagNoSplitMD  bool
	flagDebug      bool
)

var rootCmd = &cobra.Command{
	Use:   "icity-exporter",
	Short: "Export iCity diary posts to JSON, TXT and per-day Markdown",
	Long: `Logs into iCity, walks the diary listing page by page, and exports the
deduplicated entries as a JSON array, a readable TXT file, and a tree of
per-day Markdown files. Credentials and tuning come from flags, a .env
file, or environment variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagUsername, "username", "", "iCity login name or email (env: ICITY_USERNAME)")
	rootCmd.Flags().StringVar(&flagPassword, "password", "", "iCity password (env: ICITY_PASSWORD)")
	rootCmd.Flags().StringVar(&flagTargetUser, "target-user", "", "user whose diary to export (defaults to the login name)")
	rootCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "export directory (default ./export)")
	rootCmd.Flags().StringVar(&flagPrefix, "prefix", "", "output file name prefix")
	rootCmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "only fetch the first N pages (0 = all)")
	rootCmd.Flags().BoolVar(&flagNoSplitMD, "no-split-md", false, "skip the per-day Markdown tree")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// usageError marks validation failures that should exit with status 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func run() error {
	logger := utils.NewLogger()
	logger.SetDebug(flagDebug)

	cfg := config.Load()
	applyFlagOverrides(cfg)

	if cfg.Username == "" || cfg.Password == "" {
		return &usageError{"credentials required: set --username/--password or ICITY_USERNAME/ICITY_PASSWORD"}
	}
	if flagMaxPages < 0 {
		return &usageError{"--max-pages must be a positive integer"}
	}
	if cfg.TargetUser == "" {
		cfg.TargetUser = cfg.Username
	}

	logger.Info("=== iCity diary export starting ===")
	logger.Info("Config — target: %s | output: %s | max pages: %s | rate: %dms",
		cfg.TargetUser, cfg.OutputDir, pageCap(cfg.MaxPages), cfg.RateLimitMs)

	client, err := icity.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.LoginRetries, logger)
	if err != nil {
		return err
	}

	if err := client.Login(cfg.Username, cfg.Password, cfg.TargetUser); err != nil {
		logger.Error("Login failed: %v", err)
		return err
	}

	scraper := icity.NewScraper(client.FetchPage, cfg.BaseURL, icity.Options{
		MaxPages:  cfg.MaxPages,
		RateLimit: time.Duration(cfg.RateLimitMs) * time.Millisecond,
		Progress: func(page, added, total int) {
			logger.Info("[page %d] +%d entries (total: %d)", page, added, total)
		},
	}, logger)

	entries, err := scraper.ScrapeAll(cfg.PostsURL())
	if err != nil {
		if errors.Is(err, icity.ErrNoEntries) {
			logger.Error("Nothing exported: no diary entries found — check account access and the target user")
			return err
		}
		logger.Error("Scrape failed: %v", err)
		return err
	}

	logger.Info("Scraped %d unique entries — writing outputs...", len(entries))

	report, mdFiles, err := export(cfg, entries, logger)
	if err != nil {
		return err
	}

	services.NewSummaryService(logger).Print(report)

	fmt.Printf("  Done. JSON → %s | TXT → %s", cfg.JSONPath(), cfg.TXTPath())
	if cfg.SplitMD {
		fmt.Printf(" | MD → %s (%d day files)", cfg.MarkdownRoot(), mdFiles)
	}
	fmt.Println()
	return nil
}

// export writes every configured sink. It runs only after a fully
// successful scrape, so no output file is ever left half-written by an
// aborted run.
func export(cfg *config.Config, entries []*models.Entry, logger *utils.Logger) (*models.ExportReport, int, error) {
	jsonWriter, err := storage.NewJSONWriter(cfg.JSONPath())
	if err != nil {
		return nil, 0, err
	}
	defer jsonWriter.Close()

	txtWriter, err := storage.NewTXTWriter(cfg.TXTPath())
	if err != nil {
		return nil, 0, err
	}
	defer txtWriter.Close()

	if err := jsonWriter.Write(entries); err != nil {
		return nil, 0, err
	}
	if err := txtWriter.Write(entries); err != nil {
		return nil, 0, err
	}

	mdFiles := 0
	if cfg.SplitMD {
		mdWriter := storage.NewMarkdownWriter(cfg.MarkdownRoot())
		if err := mdWriter.Write(entries); err != nil {
			return nil, 0, err
		}
		mdFiles = mdWriter.FileCount()
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("PostgreSQL mirror unavailable: %v", err)
		} else {
			defer pgWriter.Close()
			if err := pgWriter.Write(entries); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Entries mirrored to PostgreSQL (table: entries)")
			}
		}
	}

	return services.NewSummaryService(logger).Generate(entries), mdFiles, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if flagUsername != "" {
		cfg.Username = flagUsername
	}
	if flagPassword != "" {
		cfg.Password = flagPassword
	}
	if flagTargetUser != "" {
		cfg.TargetUser = flagTargetUser
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagPrefix != "" {
		cfg.Prefix = flagPrefix
	}
	if flagMaxPages > 0 {
		cfg.MaxPages = flagMaxPages
	}
	if flagNoSplitMD {
		cfg.SplitMD = false
	}
}

func pageCap(n int) string {
	if n <= 0 {
		return "all"
	}
	return fmt.Sprintf("%d", n)
}
