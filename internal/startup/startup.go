package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/term"

	"photogrid/internal/logging"
	"photogrid/internal/metrics"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	MediaDir        string        `toml:"media_dir"`
	CacheDir        string        `toml:"cache_dir"`
	Port            string        `toml:"port"`
	MetricsPort     string        `toml:"metrics_port"`
	MetricsEnabled  bool          `toml:"metrics_enabled"`
	WatchEnabled    bool          `toml:"watch_enabled"`
	FrameInterval   time.Duration `toml:"frame_interval"`
	WidgetID        string        `toml:"widget_id"`
	LogStaticFiles  bool          `toml:"log_static_files"`
	LogHealthChecks bool          `toml:"log_health_checks"`

	// Derived
	CachePath string `toml:"-"`
}

func defaults() Config {
	return Config{
		MediaDir:        "/media",
		CacheDir:        "/cache",
		Port:            "8080",
		MetricsPort:     "9090",
		MetricsEnabled:  true,
		WatchEnabled:    true,
		FrameInterval:   250 * time.Millisecond,
		WidgetID:        "default",
		LogHealthChecks: true,
	}
}

// LoadConfig assembles configuration in ascending precedence: built-in
// defaults, an optional TOML config file, then environment variables
// (a .env file in the working directory is folded into the environment
// first).
func LoadConfig() (*Config, error) {
	// best effort; absence of .env is the normal case
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded environment from .env")
	}

	printBanner()
	logSystemInfo()

	cfg := defaults()
	if err := applyConfigFile(&cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  MEDIA_DIR:         %s", cfg.MediaDir)
	logging.Info("  CACHE_DIR:         %s", cfg.CacheDir)
	logging.Info("  PORT:              %s", cfg.Port)
	logging.Info("  METRICS_PORT:      %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:   %v", cfg.MetricsEnabled)
	logging.Info("  WATCH_ENABLED:     %v", cfg.WatchEnabled)
	logging.Info("  FRAME_INTERVAL:    %s", cfg.FrameInterval)
	logging.Info("  WIDGET_ID:         %s", cfg.WidgetID)
	logging.Info("  LOG_STATIC_FILES:  %v", cfg.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS: %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	var err error
	cfg.MediaDir, err = filepath.Abs(cfg.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	logging.Info("  Media directory (absolute): %s", cfg.MediaDir)

	cfg.CacheDir, err = filepath.Abs(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	logging.Info("  Cache directory (absolute): %s", cfg.CacheDir)

	if err := ensureDirectory(cfg.MediaDir, "media"); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}
	if err := ensureDirectory(cfg.CacheDir, "cache"); err != nil {
		return nil, fmt.Errorf("cache directory error: %w", err)
	}
	logging.Debug("  Testing cache directory write access...")
	if err := testWriteAccess(cfg.CacheDir); err != nil {
		return nil, fmt.Errorf("cache directory is not writable (required for the blob cache): %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	cfg.CachePath = filepath.Join(cfg.CacheDir, "photogrid.db")

	metrics.SetAppInfo(Version, Commit, GoVersion)
	return &cfg, nil
}

// applyConfigFile overlays values from the TOML config file when one
// exists. CONFIG_FILE overrides the default location; pointing it at a
// missing file is an error, a missing default file is not.
func applyConfigFile(cfg *Config) error {
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = "photogrid.toml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	logging.Info("Loaded config file: %s", path)
	return nil
}

func applyEnv(cfg *Config) {
	cfg.MediaDir = getEnv("MEDIA_DIR", cfg.MediaDir)
	cfg.CacheDir = getEnv("CACHE_DIR", cfg.CacheDir)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.WatchEnabled = getEnvBool("WATCH_ENABLED", cfg.WatchEnabled)
	cfg.WidgetID = getEnv("WIDGET_ID", cfg.WidgetID)
	cfg.LogStaticFiles = getEnvBool("LOG_STATIC_FILES", cfg.LogStaticFiles)
	cfg.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", cfg.LogHealthChecks)

	if v := os.Getenv("FRAME_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FrameInterval = d
		} else {
			logging.Warn("Invalid FRAME_INTERVAL %q, keeping %s", v, cfg.FrameInterval)
		}
	}
}

func printBanner() {
	// skip the ASCII art when stdout is a pipe or log collector
	if term.IsTerminal(int(os.Stdout.Fd())) {
		banner := `
------------------------------------------------------------
    ____  __          __        ______     _     __
   / __ \/ /_  ____  / /_____  / ____/____(_)___/ /
  / /_/ / __ \/ __ \/ __/ __ \/ / __/ ___/ / __  /
 / ____/ / / / /_/ / /_/ /_/ / /_/ / /  / / /_/ /
/_/   /_/ /_/\____/\__/\____/\____/_/  /_/\__,_/

------------------------------------------------------------`
		fmt.Println(banner)
	}
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// write access was confirmed regardless
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
