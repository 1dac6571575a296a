package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env-required:"true"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Tokens struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env-default:"24h"`
	ResetTokenTTL  time.Duration `yaml:"reset_token_ttl" env-default:"1h"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env-required:"true"`
	QueueName string `yaml:"queue_name" env-default:"reset_emails"`
}

type SMTP struct {
	Host     string `yaml:"host" env-required:"true"`
	Port     int    `yaml:"port" env-default:"587"`
	Username string `yaml:"username" env-required:"true"`
	Password string `yaml:"password" env:"SMTP_PASSWORD" env-required:"true"`
}

type Auth struct {
	Env         string `yaml:"env" env-default:"local"`
	FrontendURL string `yaml:"frontend_url" env-default:"http://localhost:3000"`
	Tokens      `yaml:"tokens"`
	RabbitMQ    `yaml:"rabbitmq"`
	Postgres    `yaml:"postgres"`
	HTTPServer  `yaml:"http_server"`
}

type AuthService struct {
	URL     string        `yaml:"url" env-default:"http://localhost:8081"`
	Timeout time.Duration `yaml:"timeout" env-default:"3s"`
}

type Finance struct {
	Env         string `yaml:"env" env-default:"local"`
	AuthService `yaml:"auth_service"`
	Postgres    `yaml:"postgres"`
	HTTPServer  `yaml:"http_server"`
}

type Gateway struct {
	Env           string        `yaml:"env" env-default:"local"`
	AuthURL       string        `yaml:"auth_url" env-default:"http://localhost:8081"`
	FinanceURL    string        `yaml:"finance_url" env-default:"http://localhost:8082"`
	HealthTimeout time.Duration `yaml:"health_timeout" env-default:"5s"`
	HTTPServer    `yaml:"http_server"`
}

type Mailer struct {
	Env       string `yaml:"env" env-default:"local"`
	FromEmail string `yaml:"from_email" env-required:"true"`
	SMTP      `yaml:"smtp"`
	RabbitMQ  `yaml:"rabbitmq"`
}

// MustLoad reads the service config from path, falling back to the
// CONFIG_PATH environment variable when path is empty.
func MustLoad[T any](path string) *T {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("Config file does not exist: " + path)
	}

	var cfg T

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("Failed to read config: " + err.Error())
	}

	return &cfg
}
