package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
	Outbox       OutboxConfig
	Assignment   AssignmentConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Eventing.validate(cfg.PubSub, cfg.Kafka); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BREEZEPOINT_APP_ENV" required:"true"`
	Port         string `envconfig:"BREEZEPOINT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BREEZEPOINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREEZEPOINT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BREEZEPOINT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BREEZEPOINT_DB_DSN"`
	Driver string `envconfig:"BREEZEPOINT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BREEZEPOINT_DB_HOST"`
	LegacyPort     int    `envconfig:"BREEZEPOINT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BREEZEPOINT_DB_USER"`
	LegacyPassword string `envconfig:"BREEZEPOINT_DB_PASSWORD"`
	LegacyName     string `envconfig:"BREEZEPOINT_DB_NAME"`
	LegacySSLMode  string `envconfig:"BREEZEPOINT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREEZEPOINT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREEZEPOINT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREEZEPOINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREEZEPOINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"BREEZEPOINT_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREEZEPOINT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREEZEPOINT_REDIS_ADDR"`
	Password     string        `envconfig:"BREEZEPOINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREEZEPOINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREEZEPOINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREEZEPOINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREEZEPOINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREEZEPOINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREEZEPOINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies the bearer tokens minted by the identity service.
type JWTConfig struct {
	Secret            string `envconfig:"BREEZEPOINT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BREEZEPOINT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BREEZEPOINT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BREEZEPOINT_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BREEZEPOINT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type EventingConfig struct {
	Driver string `envconfig:"BREEZEPOINT_EVENTING_DRIVER" default:"pubsub"`
}

// NormalizedDriver returns the lower-cased eventing driver, defaulting to pubsub.
func (e EventingConfig) NormalizedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(e.Driver))
	if driver == "" {
		return EventingDriverPubSub
	}
	return driver
}

func (e EventingConfig) validate(ps PubSubConfig, kafka KafkaConfig) error {
	switch e.NormalizedDriver() {
	case EventingDriverPubSub:
		if strings.TrimSpace(ps.AssignmentsTopic) == "" {
			return fmt.Errorf("%s is required when the pubsub driver is used", EnvPubSubAssignmentsTopic)
		}
	case EventingDriverKafka:
		if len(kafka.Brokers) == 0 {
			return fmt.Errorf("%s is required when the kafka driver is used", EnvKafkaBrokers)
		}
	default:
		return fmt.Errorf("unsupported eventing driver %q", e.Driver)
	}
	return nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BREEZEPOINT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BREEZEPOINT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BREEZEPOINT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AssignmentsTopic        string `envconfig:"BREEZEPOINT_PUBSUB_ASSIGNMENTS_TOPIC" default:"bp-assignment-events"`
	AssignmentsSubscription string `envconfig:"BREEZEPOINT_PUBSUB_ASSIGNMENTS_SUBSCRIPTION"`
}

type KafkaConfig struct {
	Brokers          []string      `envconfig:"BREEZEPOINT_KAFKA_BROKERS"`
	AssignmentsTopic string        `envconfig:"BREEZEPOINT_KAFKA_ASSIGNMENTS_TOPIC" default:"assignment-events"`
	WriteTimeout     time.Duration `envconfig:"BREEZEPOINT_KAFKA_WRITE_TIMEOUT" default:"10s"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BREEZEPOINT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BREEZEPOINT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BREEZEPOINT_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"BREEZEPOINT_OUTBOX_RETENTION_DAYS" default:"30"`
	// Dead letters are kept longer than published rows so operators can
	// replay them by hand.
	DLQRetentionDays int `envconfig:"BREEZEPOINT_OUTBOX_DLQ_RETENTION_DAYS" default:"90"`
}

// AssignmentConfig tunes the supplier assignment workflow.
type AssignmentConfig struct {
	PendingTTL   time.Duration `envconfig:"BREEZEPOINT_ASSIGNMENT_PENDING_TTL" default:"48h"`
	CronInterval time.Duration `envconfig:"BREEZEPOINT_ASSIGNMENT_CRON_INTERVAL" default:"1h"`
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
