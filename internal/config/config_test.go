package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "test_jwt_secret")

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "v1", cfg.JWT.KeyID)
	assert.Equal(t, 10*time.Second, cfg.Kakao.Timeout)
	assert.Equal(t, "https://kauth.kakao.com/oauth/token", cfg.Kakao.TokenURL)
	assert.Equal(t, 50, cfg.Feed.PageSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("APP_PORT", ":9090")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, ":9090", cfg.App.Port)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadFrom(viper.New())
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}
