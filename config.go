// Copyright 2021 The apix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apix

import (
	"time"

	"github.com/joeshaw/envdecode"
)

// DefaultCacheBodyLimit is the largest response body stored in the
// response cache when Config.CacheBodyLimit is zero.
const DefaultCacheBodyLimit = 1 << 20

// Config holds the process-wide switches of an Engine. The zero value
// is a valid configuration: no timeout maximum, no nested or result
// validation, and DefaultCacheBodyLimit.
//
// Config can be loaded from the environment with ConfigFromEnv.
type Config struct {
	// MaxTimeout is the largest timeout a directive may set on a
	// call. A larger timeout fails the call with a configuration error
	// before anything is sent. Zero means no maximum.
	// ENV: APIX_MAX_TIMEOUT
	MaxTimeout time.Duration `env:"APIX_MAX_TIMEOUT"`
	// ValidateNested enables validation of the `validate` struct tags
	// of struct arguments. ENV: APIX_VALIDATE_NESTED
	ValidateNested bool `env:"APIX_VALIDATE_NESTED"`
	// ValidateResult enables validation of the `validate` struct tags
	// of deserialized results. ENV: APIX_VALIDATE_RESULT
	ValidateResult bool `env:"APIX_VALIDATE_RESULT"`
	// CacheBodyLimit is the largest response body, in bytes, that is
	// stored in the response cache. Larger responses are not cached.
	// Zero means DefaultCacheBodyLimit and a negative value means no
	// limit. ENV: APIX_CACHE_BODY_LIMIT
	CacheBodyLimit int `env:"APIX_CACHE_BODY_LIMIT"`
}

// ConfigFromEnv loads a Config from the environment variables named
// in the Config field documentation. Unset variables leave the
// corresponding field at its zero value.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	err := envdecode.Decode(&cfg)
	if err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) cacheBodyLimit() int {
	switch {
	case cfg.CacheBodyLimit == 0:
		return DefaultCacheBodyLimit
	case cfg.CacheBodyLimit < 0:
		return 0
	default:
		return cfg.CacheBodyLimit
	}
}
