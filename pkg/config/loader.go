// Package config loads service configuration from the process environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg, a pointer to a struct carrying `env` tags, from the
// environment. Defaults come from `envDefault` tags; list-valued fields split
// on their `envSeparator`. Validation beyond parsing belongs to the caller's
// own config type.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
