package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const defaultNear = "Singapore"

// Config holds CLI configuration.
type Config struct {
	Version string

	ConfigDir string
	DBPath    string
	LogPath   string
	PrefsPath string
	Memory    bool
	Debug     bool

	YelpAPIKey    string
	SearchEnabled bool
	Near          string

	ShowVersion bool
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags(version string, args []string) (*Config, error) {
	config := &Config{Version: version}

	// Load .env files first so env-based defaults work with flag parsing.
	loadEnvFiles(".")

	flags := flag.NewFlagSet("cafelog", flag.ContinueOnError)
	flags.StringVar(&config.DBPath, "db", "", "Path to SQLite database file (default: ~/.cafelog/cafelog.db)")
	flags.BoolVar(&config.Memory, "memory", false, "Keep the journal in memory only, starting from sample cafes")
	flags.StringVar(&config.YelpAPIKey, "yelp-key", "", "Yelp Fusion API key (or set YELP_API_KEY env var)")
	flags.StringVar(&config.Near, "near", "", "Area location search is biased to (or set CAFELOG_NEAR, default: Singapore)")
	flags.StringVar(&config.LogPath, "log", "", "Path to log file (default: ~/.cafelog/cafelog.log)")
	flags.BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "cafelog %s - a journal of the cafes you visit\n\nUsage:\n", version)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if config.ShowVersion {
		return config, nil
	}

	if config.YelpAPIKey == "" {
		config.YelpAPIKey = strings.TrimSpace(os.Getenv("YELP_API_KEY"))
	}

	configDir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	config.ConfigDir = configDir

	if config.DBPath == "" {
		config.DBPath = filepath.Join(configDir, "cafelog.db")
	}
	if config.LogPath == "" {
		config.LogPath = filepath.Join(configDir, "cafelog.log")
	}
	config.PrefsPath = filepath.Join(configDir, "ui_prefs.json")

	settings, err := loadOnboardingSettings(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if shouldRunOnboarding(settings) {
		settings, err = runOnboarding(configDir, config.YelpAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}

	config.SearchEnabled = settings.SearchEnabled
	if config.YelpAPIKey == "" && settings.SearchEnabled {
		storedKey, err := loadStoredYelpAPIKey(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored Yelp API key: %w", err)
		}
		config.YelpAPIKey = storedKey
	}
	if config.YelpAPIKey != "" {
		config.SearchEnabled = true
	}

	config.Near = firstNonEmpty(config.Near, os.Getenv("CAFELOG_NEAR"), settings.Near, defaultNear)

	return config, nil
}

// resolveConfigDir returns CAFELOG_HOME, or ~/.cafelog.
func resolveConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("CAFELOG_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cafelog"), nil
}

// loadEnvFiles loads .env then .env.local from dir. Variables already set in
// the environment win, and missing files are skipped.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		err := godotenv.Load(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", name, err)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
