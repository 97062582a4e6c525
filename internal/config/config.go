package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Type string `yaml:"type"` // "postgres" or "sqlite"
		URL  string `yaml:"url"`  // postgres DSN
		Path string `yaml:"path"` // sqlite file path
	} `yaml:"database"`

	Moodle struct {
		BaseURL        string `yaml:"base_url"`
		Token          string `yaml:"token"`
		CourseID       int64  `yaml:"course_id"`
		RequestDelayMs int64  `yaml:"request_delay_ms"`
	} `yaml:"moodle"`

	Gemini struct {
		APIKey            string `yaml:"api_key"`
		ClassifierModel   string `yaml:"classifier_model"`
		ProfessorModel    string `yaml:"professor_model"`
		MemoryModel       string `yaml:"memory_model"`
		MaxRetries        int    `yaml:"max_retries"`
		ExtraInstructions string `yaml:"extra_instructions"` // course-specific additions to the professor prompt
	} `yaml:"gemini"`

	Engine struct {
		TickMinutes int64 `yaml:"tick_minutes"`
		PostDelayMs int64 `yaml:"post_delay_ms"`
	} `yaml:"engine"`

	Notifier struct {
		Enabled          bool   `yaml:"enabled"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		ChatID           int64  `yaml:"chat_id"`
	} `yaml:"notifier"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Port == "" {
		config.Server.Port = "8003"
	}

	if config.Database.Type == "" {
		config.Database.Type = "postgres"
	}

	if config.Database.Path == "" {
		config.Database.Path = "./data/profbot.db"
	}

	if config.Moodle.RequestDelayMs == 0 {
		config.Moodle.RequestDelayMs = 500
	}

	if config.Gemini.ClassifierModel == "" {
		config.Gemini.ClassifierModel = "gemini-2.0-flash-exp"
	}

	if config.Gemini.ProfessorModel == "" {
		config.Gemini.ProfessorModel = config.Gemini.ClassifierModel
	}

	if config.Gemini.MemoryModel == "" {
		config.Gemini.MemoryModel = config.Gemini.ClassifierModel
	}

	if config.Gemini.MaxRetries == 0 {
		config.Gemini.MaxRetries = 3
	}

	if config.Engine.TickMinutes == 0 {
		config.Engine.TickMinutes = 5
	}

	if config.Engine.PostDelayMs == 0 {
		config.Engine.PostDelayMs = 1000
	}

	// Expand environment variables in secrets
	config.Database.URL = os.ExpandEnv(config.Database.URL)
	config.Moodle.Token = os.ExpandEnv(config.Moodle.Token)
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)
	config.Notifier.TelegramBotToken = os.ExpandEnv(config.Notifier.TelegramBotToken)

	return config, nil
}
