package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishkit/parishkit/core/config"
)

type testConfig struct {
	Host string `env:"CONFIG_TEST_HOST" envDefault:"localhost"`
	Port int    `env:"CONFIG_TEST_PORT" envDefault:"8080"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("reads environment", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_ENV_HOST", "api.example.com")

		type envConfig struct {
			Host string `env:"CONFIG_TEST_ENV_HOST" envDefault:"localhost"`
		}

		var cfg envConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "api.example.com", cfg.Host)
	})

	t.Run("caches per type", func(t *testing.T) {
		var first testConfig
		require.NoError(t, config.Load(&first))

		// Environment changes after the first load are not observed.
		t.Setenv("CONFIG_TEST_HOST", "changed.example.com")

		var second testConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requiredConfig")
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		var cfg *testConfig
		err := config.Load(cfg)
		assert.ErrorIs(t, err, config.ErrNotStructPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})
}
