package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 为空则只写 stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Revocation struct {
	SweepIntervalMin int
}

func (r Revocation) SweepInterval() time.Duration {
	return time.Duration(r.SweepIntervalMin) * time.Minute
}

// Mail.Driver: log | mailgun | rabbitmq
type Mail struct {
	Driver        string
	Sender        string
	MailgunDomain string
	MailgunAPIKey string
	RabbitURL     string
	RabbitQueue   string
}

type Seed struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	DB         DB
	Redis      Redis `mapstructure:"redis"`
	Revocation Revocation
	Mail       Mail
	Seed       Seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "order-service")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxSizeMB", 100)
	v.SetDefault("log.maxBackups", 7)
	v.SetDefault("log.maxAgeDays", 30)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "order-service")
	v.SetDefault("jwt.accessTokenTTLMin", 24*60)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "order-service.db")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("revocation.sweepIntervalMin", 60)
	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.sender", "no-reply@example.com")
	v.SetDefault("mail.rabbitQueue", "email.jobs")
	v.SetDefault("seed.adminUsername", "admin")
	v.SetDefault("seed.adminEmail", "admin@email.com")
	v.SetDefault("seed.adminPassword", "password")
}

// Read loads path (yaml) on top of the defaults; a missing file is not an error.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &c, nil
}

func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
