package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/motorlot/lotsync/pkg/sync"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files, and the optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Inventory source
	SheetPath string

	// State database
	StatePath string

	// Site profile override
	ProfilePath string

	// Backend connection
	BaseURL       string
	PostType      string
	RelationsPath string
	Username      string
	Password      string

	// Batch behavior
	BatchSize int
	Delay     time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// command-line flags (applied later by cobra), environment variables, .env
// files, the config file, then defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("lotsync")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".lotsync")
		}
	}

	// Config file is optional.
	_ = viper.ReadInConfig()

	config := &Config{
		ConfigFile: viper.ConfigFileUsed(),

		SheetPath:   viper.GetString("sheet_path"),
		StatePath:   viper.GetString("state_path"),
		ProfilePath: viper.GetString("profile_path"),

		BaseURL:       viper.GetString("base_url"),
		PostType:      viper.GetString("post_type"),
		RelationsPath: viper.GetString("relations_path"),
		Username:      viper.GetString("username"),
		Password:      viper.GetString("password"),

		BatchSize: viper.GetInt("batch_size"),
		Delay:     viper.GetDuration("delay"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	// Defaults
	if config.PostType == "" {
		config.PostType = "autos"
	}
	if config.StatePath == "" {
		config.StatePath = "lotsync.db"
	}
	if config.BatchSize == 0 {
		config.BatchSize = sync.DefaultBatchSize
	}
	if config.Delay == 0 {
		config.Delay = sync.DefaultDelay
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if
// not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
