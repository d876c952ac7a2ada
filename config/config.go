// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs, mirroring the YAML layout ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
	// Origins allowed to call the /api group from another host.
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // firestore, mongo or memory
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type FirestoreConfig struct {
	ProjectID       string `mapstructure:"projectID"`
	DatabaseID      string `mapstructure:"databaseID"`
	CredentialsFile string `mapstructure:"credentialsFile"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type RelayConfig struct {
	Driver         string        `mapstructure:"driver"` // telegram, s3 or none
	Timeout        time.Duration `mapstructure:"timeout"`
	SpoolDir       string        `mapstructure:"spoolDir"`
	OutboxInterval time.Duration `mapstructure:"outboxInterval"`
	MaxAttempts    int           `mapstructure:"maxAttempts"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"botToken"`
	ChatID      int64  `mapstructure:"chatID"`
	APIEndpoint string `mapstructure:"apiEndpoint"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type SeedConfig struct {
	AdminEmail    string `mapstructure:"adminEmail"`
	AdminPassword string `mapstructure:"adminPassword"`
}

// --- Main Config struct ---

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Firestore FirestoreConfig `mapstructure:"firestore"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	S3        S3Config        `mapstructure:"s3"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

var envBindings = map[string]string{
	"server.port":               "SERVER_PORT",
	"server.env":                "APP_ENV",
	"log.level":                 "LOG_LEVEL",
	"store.driver":              "STORE_DRIVER",
	"mongo.uri":                 "MONGO_URI",
	"mongo.dbName":              "MONGO_DBNAME",
	"firestore.projectID":       "FIRESTORE_PROJECT_ID",
	"firestore.databaseID":      "FIRESTORE_DATABASE_ID",
	"firestore.credentialsFile": "FIRESTORE_CREDENTIALS_FILE",
	"jwt.secret":                "JWT_SECRET",
	"jwt.expiration":            "JWT_EXPIRATION",
	"relay.driver":              "RELAY_DRIVER",
	"relay.timeout":             "RELAY_TIMEOUT",
	"relay.spoolDir":            "RELAY_SPOOL_DIR",
	"relay.outboxInterval":      "RELAY_OUTBOX_INTERVAL",
	"relay.maxAttempts":         "RELAY_MAX_ATTEMPTS",
	"telegram.botToken":         "TELEGRAM_BOT_TOKEN",
	"telegram.chatID":           "TELEGRAM_CHAT_ID",
	"telegram.apiEndpoint":      "TELEGRAM_API_ENDPOINT",
	"s3.bucket":                 "S3_BUCKET",
	"s3.region":                 "S3_REGION",
	"s3.accessKeyID":            "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":        "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":       "S3_CLOUDFRONT_DOMAIN",
	"seed.adminEmail":           "SEED_ADMIN_EMAIL",
	"seed.adminPassword":        "SEED_ADMIN_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", "firestore")
	v.SetDefault("mongo.dbName", "portal")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("relay.driver", "none")
	v.SetDefault("relay.timeout", "15s")
	v.SetDefault("relay.spoolDir", "./spool")
	v.SetDefault("relay.outboxInterval", "30s")
	v.SetDefault("relay.maxAttempts", 8)
	v.SetDefault("telegram.apiEndpoint", "https://api.telegram.org/bot%s/%s")
}

// LoadConfig reads config.yaml from path, loads path/.env when it exists, and
// lets environment variables override both.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.AutomaticEnv()
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return config, err
		}
	}

	// A missing config.yaml is fine: env vars alone can configure the portal.
	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, err
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, err
	}
	return config, nil
}

// TokenTTL parses the JWT expiration, falling back to a day.
func (c Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.Expiration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Validate rejects unknown drivers and missing credentials for the selected ones.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "firestore":
		if c.Firestore.ProjectID == "" {
			return errors.New("firestore.projectID is required for the firestore store")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri is required for the mongo store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Relay.Driver {
	case "telegram":
		if c.Telegram.BotToken == "" || c.Telegram.ChatID == 0 {
			return errors.New("telegram.botToken and telegram.chatID are required for the telegram relay")
		}
	case "s3":
		if c.S3.Bucket == "" || c.S3.Region == "" {
			return errors.New("s3.bucket and s3.region are required for the s3 relay")
		}
	case "none", "":
	default:
		return fmt.Errorf("unknown relay driver %q", c.Relay.Driver)
	}

	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	return nil
}
