package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BATISUIVI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BATISUIVI_DB_DSN"
	EnvDBHost = "BATISUIVI_DB_HOST"
	EnvDBUser = "BATISUIVI_DB_USER"
	EnvDBName = "BATISUIVI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Export       ExportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BATISUIVI_APP_ENV" required:"true"`
	Port         string `envconfig:"BATISUIVI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BATISUIVI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BATISUIVI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BATISUIVI_DB_DSN"`
	Driver string `envconfig:"BATISUIVI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BATISUIVI_DB_HOST"`
	LegacyPort     int    `envconfig:"BATISUIVI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BATISUIVI_DB_USER"`
	LegacyPassword string `envconfig:"BATISUIVI_DB_PASSWORD"`
	LegacyName     string `envconfig:"BATISUIVI_DB_NAME"`
	LegacySSLMode  string `envconfig:"BATISUIVI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BATISUIVI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BATISUIVI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BATISUIVI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BATISUIVI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BATISUIVI_REDIS_URL"`
	Address      string        `envconfig:"BATISUIVI_REDIS_ADDR"`
	Password     string        `envconfig:"BATISUIVI_REDIS_PASSWORD"`
	DB           int           `envconfig:"BATISUIVI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BATISUIVI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BATISUIVI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BATISUIVI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BATISUIVI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BATISUIVI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BATISUIVI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BATISUIVI_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"BATISUIVI_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"BATISUIVI_PUBSUB_NOTIFICATION_TOPIC" default:"batisuivi-notification-events"`
	NotificationSubscription string `envconfig:"BATISUIVI_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BATISUIVI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BATISUIVI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BATISUIVI_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type ExportConfig struct {
	CompanyName string `envconfig:"BATISUIVI_EXPORT_COMPANY_NAME" default:"Batisuivi"`
	FooterNote  string `envconfig:"BATISUIVI_EXPORT_FOOTER_NOTE"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
