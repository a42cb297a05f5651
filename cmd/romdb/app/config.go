package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/crankboy/romdb/internal/cmd/output"
	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Build configuration
	CatalogURLs   []string
	OverrideFiles []string
	OutputDir     string
	SQLitePath    string
	UserAgent     string
	HTTPTimeout   time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (ROMDB_*)
// 3. .env files
// 4. Config file (explicit path, or .romdb.yaml in the working or home directory)
// 5. Defaults
//
// An explicit config file that cannot be read, or any config file that
// cannot be parsed, is a ConfigError.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Logging also honors the unprefixed variables used by pkg/logging.
	_ = v.BindEnv("log_level", constants.EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_format", constants.EnvPrefix+"_LOG_FORMAT", "LOG_FORMAT")
	_ = v.BindEnv("log_output", constants.EnvPrefix+"_LOG_OUTPUT", "LOG_OUTPUT")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config file", err.Error(), err)
		}
	} else {
		v.SetConfigName(constants.ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config file", err.Error(), err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		CatalogURLs:   v.GetStringSlice("catalog_urls"),
		OverrideFiles: v.GetStringSlice("override_files"),
		OutputDir:     v.GetString("output_dir"),
		SQLitePath:    v.GetString("sqlite_path"),
		UserAgent:     v.GetString("user_agent"),
		HTTPTimeout:   v.GetDuration("http_timeout"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog_urls", constants.DefaultCatalogURLs)
	v.SetDefault("override_files", constants.DefaultOverrideFiles)
	v.SetDefault("output_dir", constants.DefaultOutputDir)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// Flags only ever switch a setting on or replace a value that was given, so
// a config file or environment variable is not reset by an absent flag.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Validate reports settings that would make every build fail.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.NewConfigError("output_dir", "must not be empty", nil)
	}
	if c.HTTPTimeout < 0 {
		return errors.NewConfigError("http_timeout", "must not be negative", nil)
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return errors.NewConfigError("format", err.Error(), err)
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// godotenv never overwrites a variable that is already set, so the
	// more specific file is loaded first.
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
