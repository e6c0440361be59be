package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNotStructPointer is returned when Load receives anything other than a
// non-nil pointer to a struct.
var ErrNotStructPointer = errors.New("config: target must be a non-nil struct pointer")

var (
	loadEnvOnce sync.Once
	cache       sync.Map // reflect.Type -> any
)

// Load parses environment variables into cfg. The result is cached per
// concrete type, so repeated calls with the same type are cheap and
// observe identical values. A .env file, when present in the working
// directory, is loaded before the first parse; a missing file is not an
// error.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNotStructPointer
	}

	typ := reflect.TypeOf(*cfg)
	if typ.Kind() != reflect.Struct {
		return ErrNotStructPointer
	}

	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	loadEnvOnce.Do(func() {
		// Best effort: absence of a .env file is a normal production setup.
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", typ.String(), err)
	}

	actual, _ := cache.LoadOrStore(typ, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for application
// startup where a missing required variable should halt the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
