package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. OPD_DATABASE_HOST.
const EnvPrefix = "OPD"

type Config struct {
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
	HTTP     HTTPConfig     `yaml:"http" envconfig:"HTTP"`
	GRPC     GRPCConfig     `yaml:"grpc" envconfig:"GRPC"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	Kafka    KafkaConfig    `yaml:"kafka" envconfig:"KAFKA"`
	Auth     AuthConfig     `yaml:"auth" envconfig:"AUTH"`
	Queue    QueueConfig    `yaml:"queue" envconfig:"QUEUE"`
	Worker   WorkerConfig   `yaml:"worker" envconfig:"WORKER"`
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Pretty bool   `yaml:"pretty" envconfig:"PRETTY"`
}

type HTTPConfig struct {
	Address    string `yaml:"address" envconfig:"ADDRESS"`
	SwaggerDir string `yaml:"swagger_dir" envconfig:"SWAGGER_DIR"`
}

type GRPCConfig struct {
	Address string `yaml:"address" envconfig:"ADDRESS"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" envconfig:"HOST"`
	Port     int    `yaml:"port" envconfig:"PORT"`
	User     string `yaml:"user" envconfig:"USER"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	Name     string `yaml:"name" envconfig:"NAME"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"SSL_MODE"`
	MaxConns int32  `yaml:"max_conns" envconfig:"MAX_CONNS"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"ADDR"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db" envconfig:"DB"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" envconfig:"BROKERS"`
	QueueTopic         string   `yaml:"queue_topic" envconfig:"QUEUE_TOPIC"`
	NotificationsTopic string   `yaml:"notifications_topic" envconfig:"NOTIFICATIONS_TOPIC"`
	GroupID            string   `yaml:"group_id" envconfig:"GROUP_ID"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	Issuer          string `yaml:"issuer" envconfig:"ISSUER"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes" envconfig:"TOKEN_TTL_MINUTES"`
}

// Token scopes for uniqueness checks on allocation.
const (
	TokenScopeNone   = "none"
	TokenScopeDoctor = "doctor"
	TokenScopeGlobal = "global"
)

// Position sources for the submission-time wait estimate.
const (
	PositionSourceLive   = "live"
	PositionSourceRandom = "random"
)

type QueueConfig struct {
	PerPatientMinutes        int    `yaml:"per_patient_minutes" envconfig:"PER_PATIENT_MINUTES"`
	AverageConsultMinutes    int    `yaml:"average_consult_minutes" envconfig:"AVERAGE_CONSULT_MINUTES"`
	PositionSource           string `yaml:"position_source" envconfig:"POSITION_SOURCE"`
	TokenScope               string `yaml:"token_scope" envconfig:"TOKEN_SCOPE"`
	TokenMaxAttempts         int    `yaml:"token_max_attempts" envconfig:"TOKEN_MAX_ATTEMPTS"`
	TokenClaimTTLSeconds     int    `yaml:"token_claim_ttl_seconds" envconfig:"TOKEN_CLAIM_TTL_SECONDS"`
	StrictTransitions        bool   `yaml:"strict_transitions" envconfig:"STRICT_TRANSITIONS"`
	ExcludeCompletedFromWait bool   `yaml:"exclude_completed_from_wait" envconfig:"EXCLUDE_COMPLETED_FROM_WAIT"`
	DoctorsCacheTTLSeconds   int    `yaml:"doctors_cache_ttl_seconds" envconfig:"DOCTORS_CACHE_TTL_SECONDS"`
}

type WorkerConfig struct {
	DirectoryRefreshMinutes int `yaml:"directory_refresh_minutes" envconfig:"DIRECTORY_REFRESH_MINUTES"`
}

// Default returns the configuration used when a key is absent from both the
// file and the environment.
func Default() Config {
	return Config{
		Log:  LogConfig{Level: "info"},
		HTTP: HTTPConfig{Address: ":8080"},
		GRPC: GRPCConfig{Address: ":9090"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			QueueTopic:         "opd.queue",
			NotificationsTopic: "opd.notifications",
			GroupID:            "opd-notifier",
		},
		Auth: AuthConfig{Issuer: "opdqueue", TokenTTLMinutes: 60},
		Queue: QueueConfig{
			PerPatientMinutes:      15,
			AverageConsultMinutes:  7,
			PositionSource:         PositionSourceLive,
			TokenScope:             TokenScopeNone,
			TokenMaxAttempts:       5,
			TokenClaimTTLSeconds:   30,
			DoctorsCacheTTLSeconds: 300,
		},
		Worker: WorkerConfig{DirectoryRefreshMinutes: 5},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// OPD_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Queue.TokenScope {
	case TokenScopeNone, TokenScopeDoctor, TokenScopeGlobal:
	default:
		return fmt.Errorf("queue.token_scope must be one of none, doctor, global; got %q", c.Queue.TokenScope)
	}
	switch c.Queue.PositionSource {
	case PositionSourceLive, PositionSourceRandom:
	default:
		return fmt.Errorf("queue.position_source must be live or random; got %q", c.Queue.PositionSource)
	}
	if c.Queue.PerPatientMinutes <= 0 || c.Queue.AverageConsultMinutes <= 0 {
		return fmt.Errorf("queue minute constants must be positive")
	}
	if c.Queue.TokenScope != TokenScopeNone && c.Queue.TokenMaxAttempts <= 0 {
		return fmt.Errorf("queue.token_max_attempts must be positive when token_scope is %q", c.Queue.TokenScope)
	}
	if c.Queue.TokenScope != TokenScopeNone && c.Queue.TokenClaimTTLSeconds <= 0 {
		return fmt.Errorf("queue.token_claim_ttl_seconds must be positive when token_scope is %q", c.Queue.TokenScope)
	}
	return nil
}
