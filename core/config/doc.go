// Package config provides type-safe environment variable loading with caching.
// Each configuration type is loaded once and cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	type ClientConfig struct {
//		BaseURL string `env:"PARISH_API_URL,required"`
//		Timeout int    `env:"PARISH_API_TIMEOUT" envDefault:"30"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure (useful for startup)
//	config.MustLoad(&cfg)
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime;
// repeated Load calls for the same type return the cached value. Different
// types are cached independently.
package config
