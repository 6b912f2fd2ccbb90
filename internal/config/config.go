package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultOutputDir   = "output"
	DefaultFormat      = "lrc"
	DefaultGranularity = "line"

	// Demo caps carried over from the reference pipeline: 20 lines or 50
	// words per job. Set a negative value in config.toml to disable.
	DefaultMaxLines = 20
	DefaultMaxWords = 50

	DefaultCacheTTL = 24 * time.Hour
)

// TomlConfig is the raw config.toml structure.
type TomlConfig struct {
	App struct {
		OutputDir   string `toml:"output_dir"`
		Format      string `toml:"format"`
		Granularity string `toml:"granularity"`
		MaxLines    int    `toml:"max_lines"`
		MaxWords    int    `toml:"max_words"`
		// LRC header defaults; audio tags override empty fields per job.
		Artist string `toml:"artist"`
		Title  string `toml:"title"`
		Album  string `toml:"album"`
		By     string `toml:"by"`
	} `toml:"app"`

	Aligner struct {
		Backend string `toml:"backend"`
		Model   string `toml:"model"`
		APIKey  string `toml:"api_key"`
		BaseURL string `toml:"base_url"`
	} `toml:"aligner"`

	Redis struct {
		Enabled  bool   `toml:"enabled"`
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
	} `toml:"redis"`
}

// AppConfig holds pipeline and output settings.
type AppConfig struct {
	OutputDir   string
	Format      string
	Granularity string
	MaxLines    int
	MaxWords    int
	Artist      string
	Title       string
	Album       string
	By          string
}

// AlignerConfig selects and configures the alignment backend.
type AlignerConfig struct {
	Backend string
	Model   string
	APIKey  string
	BaseURL string
}

// RedisConfig configures the optional result cache backend.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// Config is the resolved application configuration.
type Config struct {
	App     AppConfig
	Aligner AlignerConfig
	Redis   RedisConfig
}

// getConfigPath prefers XDG_CONFIG_HOME, then the user home directory.
func getConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "lyralign", "config.toml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("WARN: Cannot get user home directory: %v", err)
		return "config.toml"
	}

	return filepath.Join(homeDir, ".config", "lyralign", "config.toml")
}

func loadTomlConfig() (*TomlConfig, error) {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("INFO: Config file not found at %s, using defaults", configPath)
		return &TomlConfig{}, nil
	}

	var config TomlConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, err
	}

	log.Printf("INFO: Loaded config from %s", configPath)
	return &config, nil
}

// Load reads config.toml and overlays it on the defaults. It never fails:
// an unreadable config file degrades to the default configuration.
func Load() *Config {
	tomlConfig, err := loadTomlConfig()
	if err != nil {
		log.Printf("ERROR: Failed to load config file: %v", err)
		log.Printf("INFO: Using default configuration")
		tomlConfig = &TomlConfig{}
	}

	config := &Config{
		App: AppConfig{
			OutputDir:   DefaultOutputDir,
			Format:      DefaultFormat,
			Granularity: DefaultGranularity,
			MaxLines:    DefaultMaxLines,
			MaxWords:    DefaultMaxWords,
			By:          "lyralign",
		},
		Aligner: AlignerConfig{
			Backend: "uniform",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
	}

	if tomlConfig.App.OutputDir != "" {
		config.App.OutputDir = tomlConfig.App.OutputDir
	}
	if tomlConfig.App.Format != "" {
		config.App.Format = tomlConfig.App.Format
	}
	if tomlConfig.App.Granularity != "" {
		config.App.Granularity = tomlConfig.App.Granularity
	}
	if tomlConfig.App.MaxLines != 0 {
		config.App.MaxLines = tomlConfig.App.MaxLines
	}
	if tomlConfig.App.MaxWords != 0 {
		config.App.MaxWords = tomlConfig.App.MaxWords
	}
	if tomlConfig.App.Artist != "" {
		config.App.Artist = tomlConfig.App.Artist
	}
	if tomlConfig.App.Title != "" {
		config.App.Title = tomlConfig.App.Title
	}
	if tomlConfig.App.Album != "" {
		config.App.Album = tomlConfig.App.Album
	}
	if tomlConfig.App.By != "" {
		config.App.By = tomlConfig.App.By
	}

	if tomlConfig.Aligner.Backend != "" {
		config.Aligner.Backend = tomlConfig.Aligner.Backend
	}
	if tomlConfig.Aligner.Model != "" {
		config.Aligner.Model = tomlConfig.Aligner.Model
	}
	if tomlConfig.Aligner.APIKey != "" {
		config.Aligner.APIKey = tomlConfig.Aligner.APIKey
	}
	if tomlConfig.Aligner.BaseURL != "" {
		config.Aligner.BaseURL = tomlConfig.Aligner.BaseURL
	}

	config.Redis.Enabled = tomlConfig.Redis.Enabled
	if tomlConfig.Redis.Addr != "" {
		config.Redis.Addr = tomlConfig.Redis.Addr
	}
	if tomlConfig.Redis.Password != "" {
		config.Redis.Password = tomlConfig.Redis.Password
	}
	if tomlConfig.Redis.DB != 0 {
		config.Redis.DB = tomlConfig.Redis.DB
	}

	if config.Aligner.Backend == "whisper" && config.Aligner.APIKey == "" {
		log.Printf("WARN: Whisper backend selected without aligner.api_key in %s", getConfigPath())
		log.Printf("WARN: Falling back to the uniform placeholder backend")
	}

	return config
}
