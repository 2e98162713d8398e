/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"dirpx.dev/rtx/apis"
)

const (
	// DefaultCompare represents the default for Compare.
	// Identity is sound as long as tokens come from one Universe.
	DefaultCompare = apis.CompareIdentity
	// DefaultStrictLayout represents the default for StrictLayout.
	DefaultStrictLayout = true
	// DefaultShortNames represents the default for ShortNames.
	DefaultShortNames = false
	// DefaultMaxDepth represents the default for MaxDepth.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxDepth = 8
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxDepth is valid.
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Compare:      DefaultCompare,
		StrictLayout: DefaultStrictLayout,
		ShortNames:   DefaultShortNames,
		MaxDepth:     DefaultMaxDepth,
	}
}

// envConfig mirrors apis.Config with environment bindings.
type envConfig struct {
	Compare      apis.Comparison `env:"RTX_COMPARE" envDefault:"identity"`
	StrictLayout bool            `env:"RTX_STRICT_LAYOUT" envDefault:"true"`
	ShortNames   bool            `env:"RTX_SHORT_NAMES" envDefault:"false"`
	MaxDepth     int             `env:"RTX_MAX_DEPTH" envDefault:"8"`
}

// FromEnv reads the configuration from RTX_* environment variables and then
// applies opts on top of it.
func FromEnv(opts ...Option) (apis.Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return apis.Config{}, fmt.Errorf("rtx(config): parse env: %w", err)
	}
	cfg := apis.Config{
		Compare:      ec.Compare,
		StrictLayout: ec.StrictLayout,
		ShortNames:   ec.ShortNames,
		MaxDepth:     ec.MaxDepth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg, nil
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithComparison sets the Compare option.
func WithComparison(c apis.Comparison) Option {
	return func(cfg *apis.Config) {
		cfg.Compare = c
	}
}

// WithStrictLayout sets the StrictLayout option.
func WithStrictLayout(strict bool) Option {
	return func(cfg *apis.Config) {
		cfg.StrictLayout = strict
	}
}

// WithShortNames sets the ShortNames option.
func WithShortNames(short bool) Option {
	return func(cfg *apis.Config) {
		cfg.ShortNames = short
	}
}

// WithMaxDepth sets the MaxDepth option.
// A non-positive value resets to the default.
func WithMaxDepth(depth int) Option {
	return func(cfg *apis.Config) {
		if depth <= 0 {
			cfg.MaxDepth = DefaultMaxDepth
			return
		}
		cfg.MaxDepth = depth
	}
}
