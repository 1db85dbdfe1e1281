package main

import (
	"fmt"
	"strings"

	"taskdeck/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Auth     AuthConfig     `yaml:"auth"`
	Telegram TelegramConfig `yaml:"telegram"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwtSecret"`
	TokenTTLHours int    `yaml:"tokenTTLHours"`
}

type TelegramConfig struct {
	BotToken              string `yaml:"botToken"`
	NotifyIntervalSeconds int    `yaml:"notifyIntervalSeconds"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret is required")
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Telegram.NotifyIntervalSeconds <= 0 {
		cfg.Telegram.NotifyIntervalSeconds = 30
	}

	return &cfg, nil
}
