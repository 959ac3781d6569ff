package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the service.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Kakao    KakaoConfig    `mapstructure:"kakao"`
	Storage  StorageConfig  `mapstructure:"storage"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres, sqlite or mysql
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	KeyID  string        `mapstructure:"key_id"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

type KakaoConfig struct {
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	AuthURL       string        `mapstructure:"auth_url"`
	TokenURL      string        `mapstructure:"token_url"`
	ProfileURL    string        `mapstructure:"profile_url"`
	RedirectLocal string        `mapstructure:"redirect_local"`
	RedirectProd  string        `mapstructure:"redirect_prod"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Path      string `mapstructure:"path"`
	PublicURL string `mapstructure:"public_url"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type FeedConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// ErrMissingJWTSecret is returned by Load when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("jwt secret is required (set JWT_SECRET)")

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "pocketlog.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.key_id", "v1")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.issuer", "pocketlog")
	v.SetDefault("kakao.client_id", "")
	v.SetDefault("kakao.client_secret", "")
	v.SetDefault("kakao.auth_url", "https://kauth.kakao.com/oauth/authorize")
	v.SetDefault("kakao.token_url", "https://kauth.kakao.com/oauth/token")
	v.SetDefault("kakao.profile_url", "https://kapi.kakao.com/v2/user/me")
	v.SetDefault("kakao.redirect_local", "")
	v.SetDefault("kakao.redirect_prod", "")
	v.SetDefault("kakao.timeout", 10*time.Second)
	v.SetDefault("storage.path", "./data/media")
	v.SetDefault("storage.public_url", "/media")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("feed.page_size", 50)
}

// Load reads configuration from the defaults, an optional configs/settings.yml
// and the environment (APP_PORT, DATABASE_DSN, JWT_SECRET, ...).
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom is Load on a caller-supplied viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.AddConfigPath("./configs")
	v.AddConfigPath("/configs")
	v.SetConfigName("settings")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.Feed.PageSize <= 0 {
		cfg.Feed.PageSize = 50
	}

	return &cfg, nil
}
