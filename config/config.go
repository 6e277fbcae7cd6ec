package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server  ServerConfig  `envconfig:"SERVER"`
	DB      DBConfig      `envconfig:"DB"`
	Redis   RedisConfig   `envconfig:"REDIS"`
	JWT     JWTConfig     `envconfig:"JWT"`
	App     AppConfig     `envconfig:"APP"`
	Payment PaymentConfig `envconfig:"PAYMENT"`
}

type ServerConfig struct {
	Env                  string   `envconfig:"ENV" default:"dev"`
	Port                 string   `envconfig:"PORT" default:"8083"`
	LogLevel             string   `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownGraceSeconds int      `envconfig:"SHUTDOWN_GRACE_SECONDS" default:"10"`
	AllowedOrigins       []string `envconfig:"ALLOWED_ORIGINS"`
}

type DBConfig struct {
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD"`
	Name        string `envconfig:"NAME" default:"bookinghub"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

// DSN luôn dùng UTC cho phiên kết nối, giờ địa phương chỉ dùng khi hiển thị
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type RedisConfig struct {
	Addr           string `envconfig:"ADDR"`
	Username       string `envconfig:"USER"`
	Password       string `envconfig:"PASSWORD"`
	DB             int    `envconfig:"DB" default:"0"`
	SlotTTLSeconds int    `envconfig:"SLOT_TTL_SECONDS" default:"300"`
}

func (c RedisConfig) SlotTTL() time.Duration {
	return time.Duration(c.SlotTTLSeconds) * time.Second
}

type JWTConfig struct {
	Secret string `envconfig:"SECRET" required:"true"`
}

type AppConfig struct {
	Timezone                     string `envconfig:"TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	SweepSchedule                string `envconfig:"SWEEP_SCHEDULE" default:"@every 1m"`
	SweepBatchSize               int    `envconfig:"SWEEP_BATCH_SIZE" default:"100"`
	PendingPaymentTimeoutMinutes int    `envconfig:"PENDING_PAYMENT_TIMEOUT_MINUTES" default:"15"`
}

func (c AppConfig) PendingPaymentTimeout() time.Duration {
	return time.Duration(c.PendingPaymentTimeoutMinutes) * time.Minute
}

type PaymentConfig struct {
	RefundURL      string `envconfig:"REFUND_URL"`
	TimeoutSeconds int    `envconfig:"TIMEOUT_SECONDS" default:"10"`
}

func (c PaymentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

var (
	conf     Config
	confErr  error
	confOnce sync.Once
)

// Load nạp .env (nếu có) rồi đọc biến môi trường vào Config
func Load() (*Config, error) {
	confOnce.Do(func() {
		LoadEnv()
		confErr = envconfig.Process("", &conf)
		if confErr == nil {
			conf.Server.Env = strings.ToLower(conf.Server.Env)
		}
	})
	if confErr != nil {
		return nil, fmt.Errorf("load config: %w", confErr)
	}
	return &conf, nil
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: không load được file .env, sử dụng biến môi trường có sẵn: %v", err)
	}
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "prod"
}
