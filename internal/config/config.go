package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	User    UserConfig    `yaml:"user"`
	HTTP    HTTPConfig    `yaml:"http"`
	Redis   RedisConf     `yaml:"redis"`
	Billing BillingConfig `yaml:"billing"`
	List    ListConfig    `yaml:"list"`
}

// APIConfig описывает подключение к серверу контента
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" env:"API_BASE_URL" env-required:"true"`
	Timeout   time.Duration `yaml:"timeout" env-default:"15s"`
	RateLimit float64       `yaml:"rate_limit" env-default:"10"`
	Burst     int           `yaml:"burst" env-default:"20"`
}

type AuthConfig struct {
	AccessToken string `yaml:"access_token" env:"ACCESS_TOKEN"`
}

// UserConfig - идентичность текущего пользователя (разрешается внешней системой авторизации)
type UserConfig struct {
	ID    string `yaml:"id" env:"USER_ID"`
	Email string `yaml:"email" env:"USER_EMAIL"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

type RedisConf struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redispassword"`
	RedisDB       int           `yaml:"redis_db"`
	DialTimeout   time.Duration `yaml:"dial_timeout" env-default:"3s"`
	KeyPrefix     string        `yaml:"key_prefix" env-default:"template_hub"`
}

type BillingConfig struct {
	CreditsTTL time.Duration `yaml:"credits_ttl" env-default:"30s"`
	TimeZone   string        `yaml:"time_zone"`
	Language   string        `yaml:"language"`
}

type ListConfig struct {
	DefaultLimit int `yaml:"default_limit" env-default:"10"`
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err)
	}

	return cfg
}

// LoadPath читает конфиг без паники, нужен для CLI
func LoadPath(configPath string) (*Config, error) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &PathError{Path: configPath}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	return "config file does not exist: " + e.Path
}

// ResolvePath отдает путь из флага cobra или из CONFIG_PATH
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	return os.Getenv("CONFIG_PATH")
}
