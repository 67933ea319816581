// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/stratastor/logger"
	"gopkg.in/yaml.v2"

	"github.com/MarekChromy/Sambacontrolcenter/internal/constants"
)

var (
	instance   *Config
	once       sync.Once
	configPath string // Tracks where the config was loaded from
)

type Config struct {
	Server struct {
		Port          int    `mapstructure:"port"`
		FallbackPorts []int  `mapstructure:"fallbackPorts"`
		LogLevel      string `mapstructure:"logLevel"`
		Daemonize     bool   `mapstructure:"daemonize"`
	} `mapstructure:"server"`

	Samba struct {
		ConfPath    string `mapstructure:"confPath"`
		ServiceName string `mapstructure:"serviceName"`
		Workgroup   string `mapstructure:"workgroup"`
	} `mapstructure:"samba"`

	Mounts struct {
		FstabPath      string `mapstructure:"fstabPath"`
		CredentialsDir string `mapstructure:"credentialsDir"`
		ProcMountsPath string `mapstructure:"procMountsPath"`
	} `mapstructure:"mounts"`

	Backup struct {
		Dir           string `mapstructure:"dir"`
		Retention     int    `mapstructure:"retention"`     // copies to keep per file, 0 keeps all
		PruneInterval string `mapstructure:"pruneInterval"` // duration between pruner runs
	} `mapstructure:"backup"`

	Health struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"health"`

	Logs struct {
		Path   string `mapstructure:"path"`
		Output string `mapstructure:"output"` // stdout or file
	} `mapstructure:"logs"`

	Logger struct {
		LogLevel     string `mapstructure:"logLevel"`
		EnableSentry bool   `mapstructure:"enableSentry"`
		SentryDSN    string `mapstructure:"sentryDSN"`
	} `mapstructure:"logger"`

	// SecretKey signs the flash cookie. Also read from SECRET_KEY for
	// compatibility with existing deployments.
	SecretKey string `mapstructure:"secretKey"`

	Environment string `mapstructure:"environment"`
}

// LoadConfig loads the configuration with precedence rules.
func LoadConfig(configFilePath string) *Config {
	once.Do(func() {
		// Setup basic logger for initialization
		logConfig := logger.Config{
			LogLevel:     "info",
			EnableSentry: false,
			SentryDSN:    "",
		}
		l, err := logger.NewTag(logConfig, "config")
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		// Reset viper to avoid any potential carryover
		viper.Reset()
		viper.SetConfigType("yaml")

		// Determine which config file to use with clear priorities
		systemConfigPath := filepath.Join(GetConfigDir(), constants.ConfigFileName)

		if configFilePath != "" {
			// 1. Priority: Explicit path from command line
			configPath = configFilePath
		} else if envPath := os.Getenv("SAMBACC_CONFIG"); envPath != "" {
			// 2. Priority: Environment variable
			configPath = envPath
		} else {
			// 3. Priority: Always default to system-wide config
			configPath = systemConfigPath
		}

		l.Info("Using config file", "path", configPath)

		// Convert to absolute path if possible for consistency
		absPath, err := filepath.Abs(configPath)
		if err == nil {
			configPath = absPath
		}

		// Set config file path for viper
		viper.SetConfigFile(configPath)

		// Set defaults
		viper.SetDefault("environment", "dev")
		viper.SetDefault("server.port", 5000)
		viper.SetDefault("server.fallbackPorts", []int{5001, 5050, 8000})
		viper.SetDefault("server.logLevel", "debug")
		viper.SetDefault("server.daemonize", false)
		viper.SetDefault("samba.confPath", constants.DefaultSmbConfPath)
		viper.SetDefault("samba.serviceName", constants.DefaultSambaServiceName)
		viper.SetDefault("samba.workgroup", "WORKGROUP")
		viper.SetDefault("mounts.fstabPath", constants.DefaultFstabPath)
		viper.SetDefault("mounts.credentialsDir", constants.DefaultCredentialsDirPath)
		viper.SetDefault("mounts.procMountsPath", constants.DefaultProcMountsPath)
		viper.SetDefault("backup.dir", constants.DefaultBackupDirPath)
		viper.SetDefault("backup.retention", 0)
		viper.SetDefault("backup.pruneInterval", "24h")
		viper.SetDefault("health.endpoint", "/health")
		viper.SetDefault("logs.path", "/var/log/sambacc/sambacc.log")
		viper.SetDefault("logs.output", "stdout")
		viper.SetDefault("logger.logLevel", "debug")
		viper.SetDefault("logger.enableSentry", false)
		viper.SetDefault("logger.sentryDSN", "")
		viper.SetDefault("secretKey", "")

		// Bind environment variables
		viper.AutomaticEnv()
		viper.SetEnvPrefix("SAMBACC")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		// Try to read the config file
		err = viper.ReadInConfig()

		// Handle missing or invalid config
		if err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				// File doesn't exist, create a default one
				l.Info(
					"Config file not found, creating default at system path",
					"path",
					systemConfigPath,
				)

				// Ensure parent directory exists
				if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
					l.Error("Failed to create config directory", "err", err)
				}

				// Use defaults for now
				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}

				instance = &cfg
				configPath = systemConfigPath

				// Save default config to the system path
				if err := SaveConfig(systemConfigPath); err != nil {
					l.Error("Failed to save default configuration", "err", err)
				}
			} else {
				// Some other error (parse error, etc.)
				l.Error("Error reading config file", "err", err)

				// Still use defaults
				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}

				instance = &cfg
			}
		} else {
			// Successfully loaded config
			l.Info("Config file loaded successfully", "path", viper.ConfigFileUsed())
			configPath = viper.ConfigFileUsed()

			var cfg Config
			if err := viper.Unmarshal(&cfg); err != nil {
				// Fall back to defaults rather than leaving the
				// singleton nil
				l.Error("Failed to parse configuration", "err", err)
			}
			instance = &cfg
		}

		// The original deployment exported the signing key as SECRET_KEY,
		// which the SAMBACC prefix doesn't cover.
		if instance.SecretKey == "" {
			instance.SecretKey = os.Getenv("SECRET_KEY")
		}
		if instance.SecretKey == "" {
			l.Warn("No secret key configured, flash messages use a per-process random key")
		}

		// Log config values for debugging (redact sensitive data)
		debugCfg := *instance
		if debugCfg.SecretKey != "" {
			debugCfg.SecretKey = "[REDACTED]"
		}
		l.Debug("Loaded configuration", "config", fmt.Sprintf("%+v", debugCfg))
	})

	return instance
}

// SaveConfig persists the current configuration to a specified path.
func SaveConfig(path string) error {
	if path == "" {
		// Determine default save location based on user privileges
		if os.Geteuid() == 0 {
			if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
				return fmt.Errorf("failed to create system config directory: %w", err)
			}
			path = filepath.Join(GetConfigDir(), constants.ConfigFileName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			userConfigDir := filepath.Join(home, ".sambacc")
			if err := os.MkdirAll(userConfigDir, 0755); err != nil {
				return fmt.Errorf("failed to create user config directory: %w", err)
			}
			path = filepath.Join(userConfigDir, constants.ConfigFileName)
		}
	}

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	configYAML, err := yaml.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := os.WriteFile(path, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to write configuration to file: %w", err)
	}

	// Update the tracked config path
	configPath = path

	return nil
}

// GetLoadedConfigPath returns the path of the currently loaded configuration file.
func GetLoadedConfigPath() string {
	return configPath
}

// GetConfig returns the current configuration instance.
func GetConfig() *Config {
	if instance == nil {
		// Load default configuration
		return LoadConfig("")
	}
	return instance
}

func NewLoggerConfig(cfg *Config) logger.Config {
	if cfg == nil {
		return logger.Config{
			LogLevel:     "info",
			EnableSentry: false,
			SentryDSN:    "",
		}
	}

	return logger.Config{
		LogLevel:     cfg.Logger.LogLevel,
		EnableSentry: cfg.Logger.EnableSentry,
		SentryDSN:    cfg.Logger.SentryDSN,
	}
}
