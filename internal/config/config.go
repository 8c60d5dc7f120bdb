package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgc-labs/dgc/internal/branding"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyBuiltinComponentLib = "builtin_component_lib"
	KeyLogLevel            = "log_level"
	KeyTableBackend        = "table.backend"
	KeyTableRoot           = "table.root"
	KeyTableCacheSize      = "table.cache_size"
	KeyS3Endpoint          = "table.s3.endpoint"
	KeyS3Bucket            = "table.s3.bucket"
	KeyS3Region            = "table.s3.region"
	KeyS3AccessKey         = "table.s3.access_key"
	KeyS3SecretKey         = "table.s3.secret_key"
	KeyS3UseSSL            = "table.s3.use_ssl"
)

// envKeyReplacer maps nested keys to env names: table.s3.bucket → DGC_TABLE_S3_BUCKET.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Dir returns the path to the config directory (~/.dgc/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.dgc/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// A .env file in the working directory is loaded first so its values are
// visible through the DGC_* environment lookups.
func Load() {
	_ = godotenv.Load()

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	setDefaults()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault(KeyBuiltinComponentLib, false)
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyTableBackend, "local")
	viper.SetDefault(KeyTableRoot, filepath.Join(Dir(), "tables"))
	viper.SetDefault(KeyTableCacheSize, 64)
	viper.SetDefault(KeyS3Region, "us-east-1")
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetBool returns a boolean config value by key.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetInt returns an integer config value by key.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// BindFlag lets a command-line flag override the config key.
func BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: flag not defined", key)
	}
	return viper.BindPFlag(key, flag)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
