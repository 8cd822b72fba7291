package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Argon2   Argon2Config
	Session  SessionConfig
	Bank     BankConfig
	QR       QRConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// RequestTimeout bounds a single handler at the router.
	RequestTimeout time.Duration
}

// DBConfig holds the ledger archive connection. The archive is optional.
type DBConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength uint32
}

type SessionConfig struct {
	RevokeOnLogout bool
	// UnlockTTL is how long a passed password re-check reveals the balance.
	UnlockTTL time.Duration
}

type BankConfig struct {
	SeedDemo          bool
	MinInitialDeposit decimal.Decimal
}

type QRConfig struct {
	TTL time.Duration
}

var envBindings = map[string]string{
	"server.port":            "PORT",
	"server.request_timeout": "SERVER_REQUEST_TIMEOUT",

	"database.enabled":  "ARCHIVE_ENABLED",
	"database.host":     "DATABASE_HOST",
	"database.port":     "DATABASE_PORT",
	"database.user":     "DATABASE_USER",
	"database.password": "DATABASE_PASSWORD",
	"database.name":     "DATABASE_NAME",
	"database.ssl_mode": "DATABASE_SSL_MODE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"jwt.secret_key":   "JWT_SECRET_KEY",
	"jwt.expiry_hours": "JWT_EXPIRY_HOURS",

	"argon2.time":        "ARGON2_TIME",
	"argon2.memory":      "ARGON2_MEMORY",
	"argon2.threads":     "ARGON2_THREADS",
	"argon2.key_length":  "ARGON2_KEY_LENGTH",
	"argon2.salt_length": "ARGON2_SALT_LENGTH",

	"session.revoke_on_logout": "SESSION_REVOKE_ON_LOGOUT",
	"session.unlock_ttl":       "SESSION_UNLOCK_TTL",

	"bank.seed_demo":           "BANK_SEED_DEMO",
	"bank.min_initial_deposit": "BANK_MIN_INITIAL_DEPOSIT",

	"qr.ttl": "QR_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "kodbank")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("session.revoke_on_logout", false)
	v.SetDefault("session.unlock_ttl", 2*time.Minute)

	v.SetDefault("bank.seed_demo", true)
	v.SetDefault("bank.min_initial_deposit", "500")

	v.SetDefault("qr.ttl", 5*time.Minute)
}

// Load reads configuration from the optional env file at path, then from the
// environment. Environment variables win.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Config file not found, using defaults: %v", err)
		}
		// .env keys arrive flat (jwt_secret_key); lift them under their
		// dotted names as defaults so real environment variables still win.
		for key, env := range envBindings {
			if flat := strings.ToLower(env); v.InConfig(flat) {
				v.SetDefault(key, v.Get(flat))
			}
		}
	}

	v.AutomaticEnv()
	for key, env := range envBindings {
		v.BindEnv(key, env)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	minDeposit, err := decimal.NewFromString(v.GetString("bank.min_initial_deposit"))
	if err != nil {
		return nil, errors.New("bank.min_initial_deposit must be a decimal number")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
		},
		Database: DBConfig{
			Enabled:         v.GetBool("database.enabled"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("jwt.secret_key"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetUint32("argon2.salt_length"),
		},
		Session: SessionConfig{
			RevokeOnLogout: v.GetBool("session.revoke_on_logout"),
			UnlockTTL:      v.GetDuration("session.unlock_ttl"),
		},
		Bank: BankConfig{
			SeedDemo:          v.GetBool("bank.seed_demo"),
			MinInitialDeposit: minDeposit,
		},
		QR: QRConfig{
			TTL: v.GetDuration("qr.ttl"),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}
	if cfg.JWT.ExpiryHours <= 0 {
		return nil, errors.New("JWT_EXPIRY_HOURS must be positive")
	}
	return cfg, nil
}
