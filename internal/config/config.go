package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath используется, если CONFIG_PATH не задан
const DefaultPath = "config/config.yaml"

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	App        `yaml:"app"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Kafka      `yaml:"kafka"`
	Logger     `yaml:"logger"`
	Storage    `yaml:"storage"`
	Payments   `yaml:"payments"`
	Session    `yaml:"session"`
}

// App содержит общие настройки витрины
type App struct {
	// BaseURL нужен для ссылок возврата из платёжной страницы
	BaseURL string `yaml:"base_url"`
	// WebDir — каталог со статикой страниц
	WebDir string `yaml:"web_dir"`
}

// HTTPServer содержит конфигурацию для HTTP-сервера
type HTTPServer struct {
	Port    string        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// Postgres содержит конфигурацию для подключения к базе данных
type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

// Kafka содержит конфигурацию для событий ревалидации страниц
type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage содержит конфигурацию S3-совместимого объектного хранилища
type Storage struct {
	Endpoint  string        `yaml:"endpoint"`
	AccessKey string        `yaml:"access_key"`
	SecretKey string        `yaml:"secret_key"`
	Bucket    string        `yaml:"bucket"`
	Region    string        `yaml:"region"`
	UseSSL    bool          `yaml:"use_ssl"`
	UploadTTL time.Duration `yaml:"upload_ttl"`
}

// Payments содержит конфигурацию платёжного провайдера
type Payments struct {
	SecretKey string `yaml:"secret_key"`
	Currency  string `yaml:"currency"`
}

// Session содержит конфигурацию сессионных токенов
type Session struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	CookieName string `yaml:"cookie_name"`
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		log.Fatalf("failed to read config file: %s", err)
	}

	cfg, err := Parse(file)
	if err != nil {
		log.Fatalf("failed to unmarshal config: %s", err)
	}

	return cfg
}

// Parse разбирает yaml и подставляет значения по умолчанию
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// PathFromEnv возвращает путь к конфигу из CONFIG_PATH или путь по умолчанию
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) applyDefaults() {
	if c.HTTPServer.Port == "" {
		c.HTTPServer.Port = ":8080"
	}
	if c.HTTPServer.Timeout == 0 {
		c.HTTPServer.Timeout = 10 * time.Second
	}
	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "storefront.revalidate"
	}
	if c.Storage.Region == "" {
		// с явным регионом клиент подписывает ссылки без запроса к хранилищу
		c.Storage.Region = "us-east-1"
	}
	if c.Storage.UploadTTL == 0 {
		c.Storage.UploadTTL = 10 * time.Minute
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = "usd"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "session"
	}
	if c.App.WebDir == "" {
		c.App.WebDir = "./web/"
	}
}
