package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/zfogg/pageshare/pkg/kv"
	"github.com/zfogg/pageshare/pkg/snapshot"
	"github.com/zfogg/pageshare/pkg/telemetry"
)

// EnvPrefix prefixes environment overrides: store.backend is read from PAGESHARE_STORE_BACKEND.
const EnvPrefix = "PAGESHARE"

var configDir string
var configFilePath string
var sessionPath string

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\pageshare
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "pageshare"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/pageshare
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pageshare"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "PageShare", "config.toml")}
	}

	return []string{
		"/etc/pageshare/config.toml",
		"/usr/local/etc/pageshare/config.toml",
	}
}

// Init initializes the configuration. Precedence, lowest first: defaults, system config,
// user config, .env in the working directory, PAGESHARE_* environment.
func Init(configPath string) error {
	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	sessionPath = filepath.Join(configDir, "session.json")

	// .env is optional; existing environment variables win
	_ = godotenv.Load()

	viper.SetConfigType("toml")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.ReadInConfig()
			break
		}
	}

	// user config overrides system config
	viper.SetConfigFile(configFilePath)
	_ = viper.ReadInConfig()

	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8787")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("output.format", "text")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")

	viper.SetDefault("store.backend", "file")
	viper.SetDefault("store.dir", filepath.Join(configDir, "store"))
	viper.SetDefault("store.quota_bytes", 5*1024*1024) // browser localStorage default
	viper.SetDefault("store.max_records", snapshot.DefaultMaxRecords)
	viper.SetDefault("store.max_bytes", snapshot.DefaultMaxBytes)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "pageshare:")
	viper.SetDefault("redis.max_value_bytes", 0)

	viper.SetDefault("sql.driver", "sqlite")
	viper.SetDefault("sql.dsn", filepath.Join(configDir, "pageshare.db"))
	viper.SetDefault("sql.max_value_bytes", 0)
	viper.SetDefault("sql.debug", false)

	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.bucket", "")
	viper.SetDefault("s3.prefix", "pageshare")
	viper.SetDefault("s3.max_value_bytes", 0)

	viper.SetDefault("sync.debounce_ms", 500)
	viper.SetDefault("sync.timeout_ms", 5000)

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", "8788")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.shutdown_timeout", 10)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "localhost:4318")
	viper.SetDefault("otel.service_name", "pageshare")
	viper.SetDefault("otel.environment", "development")
	viper.SetDefault("otel.sampling_rate", 1.0)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	switch key {
	case "log.file", "store.dir", "sql.dsn":
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetInt64 returns an int64 configuration value
func GetInt64(key string) int64 {
	return viper.GetInt64(key)
}

// GetBool returns a bool configuration value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float configuration value
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetStringSlice returns a list configuration value
func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// Set overrides a value for this process only.
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// SetString sets a string configuration value and writes the user config
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFilePath returns the user config file path
func GetConfigFilePath() string {
	return configFilePath
}

// GetSessionPath returns the path to the session file
func GetSessionPath() string {
	return sessionPath
}

// Store returns the backend configuration.
func Store() kv.Config {
	return kv.Config{
		Backend:    GetString("store.backend"),
		Dir:        GetString("store.dir"),
		QuotaBytes: GetInt64("store.quota_bytes"),
		Redis: kv.RedisConfig{
			Host:          GetString("redis.host"),
			Port:          GetString("redis.port"),
			Password:      GetString("redis.password"),
			DB:            GetInt("redis.db"),
			Prefix:        GetString("redis.prefix"),
			MaxValueBytes: GetInt64("redis.max_value_bytes"),
		},
		SQL: kv.SQLConfig{
			Driver:        GetString("sql.driver"),
			DSN:           GetString("sql.dsn"),
			MaxValueBytes: GetInt64("sql.max_value_bytes"),
			Debug:         GetBool("sql.debug"),
		},
		S3: kv.S3Config{
			Region:        GetString("s3.region"),
			Bucket:        GetString("s3.bucket"),
			Prefix:        GetString("s3.prefix"),
			MaxValueBytes: GetInt64("s3.max_value_bytes"),
		},
	}
}

// DebounceDelay returns the syncer quiet period.
func DebounceDelay() time.Duration {
	return time.Duration(GetInt("sync.debounce_ms")) * time.Millisecond
}

// SyncTimeout bounds a single debounced write.
func SyncTimeout() time.Duration {
	return time.Duration(GetInt("sync.timeout_ms")) * time.Millisecond
}

// Telemetry returns the tracing configuration.
func Telemetry() telemetry.Config {
	return telemetry.Config{
		ServiceName:  GetString("otel.service_name"),
		Environment:  GetString("otel.environment"),
		OTLPEndpoint: GetString("otel.endpoint"),
		Enabled:      GetBool("otel.enabled"),
		SamplingRate: GetFloat64("otel.sampling_rate"),
	}
}
