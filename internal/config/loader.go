package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rpattn/casemigrate/internal/db"
	"github.com/rpattn/casemigrate/internal/migration"
)

// Config aggregates every runtime setting of the server.
type Config struct {
	Database db.Config
	Server   ServerConfig
	Storage  StorageConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	MaxFileSize    int64
}

// StorageConfig selects and configures the uploaded-file store.
type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend         string
	Bucket          string
	LocalRoot       string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// Load reads config.yaml from configPath with environment overrides. A .env
// or .env.local file, when present, is loaded into the environment first.
func Load(configPath string) (Config, error) {
	for _, envFile := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				logrus.Warnf("[CONFIG] failed to load %s: %v", envFile, err)
			}
		}
	}

	cfg := Config{
		Database: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxFileSize:    migration.DefaultMaxFileSize,
		},
		Storage: StorageConfig{
			Backend: "local",
			Bucket:  "migrations",
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv() // allow environment overrides
	v.SetEnvPrefix("CASEMIGRATE")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("server.max_file_size")
	v.BindEnv("storage.backend")
	v.BindEnv("storage.bucket")
	v.BindEnv("storage.local_root")
	v.BindEnv("storage.endpoint_url")
	v.BindEnv("storage.access_key_id")
	v.BindEnv("storage.secret_access_key")
	v.BindEnv("storage.region")
	v.BindEnv("storage.use_ssl")

	if err := v.ReadInConfig(); err != nil {
		logrus.Info("[CONFIG] no config.yaml found, using defaults and env vars")
	} else {
		logrus.Info("[CONFIG] loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.max_file_size") {
		cfg.Server.MaxFileSize = v.GetInt64("server.max_file_size")
	}
	if v.IsSet("storage.backend") {
		cfg.Storage.Backend = v.GetString("storage.backend")
	}
	if v.IsSet("storage.bucket") {
		cfg.Storage.Bucket = v.GetString("storage.bucket")
	}
	if v.IsSet("storage.local_root") {
		cfg.Storage.LocalRoot = v.GetString("storage.local_root")
	}
	if v.IsSet("storage.endpoint_url") {
		cfg.Storage.EndpointURL = v.GetString("storage.endpoint_url")
	}
	if v.IsSet("storage.access_key_id") {
		cfg.Storage.AccessKeyID = v.GetString("storage.access_key_id")
	}
	if v.IsSet("storage.secret_access_key") {
		cfg.Storage.SecretAccessKey = v.GetString("storage.secret_access_key")
	}
	if v.IsSet("storage.region") {
		cfg.Storage.Region = v.GetString("storage.region")
	}
	if v.IsSet("storage.use_ssl") {
		cfg.Storage.UseSSL = v.GetBool("storage.use_ssl")
	}

	return cfg, nil
}
