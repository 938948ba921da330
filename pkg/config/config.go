// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/cardsync/pkg/discover"
	"github.com/walteh/cardsync/pkg/geo"
	"github.com/walteh/cardsync/pkg/materialize"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read when no config file is named
	DefaultFile = ".cardsync.yaml"
	// DefaultMessage is the commit message used when none is configured
	DefaultMessage = "Sync healthcards export"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔎 ReportArgs tunes how the report is found in an export
type ReportArgs struct {
	Names           []string `json:"names,omitempty" yaml:"names,omitempty" hcl:"names,optional"`
	TitleMarker     string   `json:"title_marker,omitempty" yaml:"title_marker,omitempty" hcl:"title_marker,optional"`
	SignatureTokens []string `json:"signature_tokens,omitempty" yaml:"signature_tokens,omitempty" hcl:"signature_tokens,optional"`
	ImagePatterns   []string `json:"image_patterns,omitempty" yaml:"image_patterns,omitempty" hcl:"image_patterns,optional"`
	IgnorePatterns  []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`
}

// 🔁 RetryArgs bounds the wait for locked destination files
type RetryArgs struct {
	Attempts *int `json:"attempts,omitempty" yaml:"attempts,omitempty" hcl:"attempts,optional"`
	DelayMS  *int `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty" hcl:"delay_ms,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Source      string             `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string             `json:"destination,omitempty" yaml:"destination,omitempty"`
	Clean       bool               `json:"clean,omitempty" yaml:"clean,omitempty"`
	Commit      bool               `json:"commit,omitempty" yaml:"commit,omitempty"`
	Push        bool               `json:"push,omitempty" yaml:"push,omitempty"`
	Message     string             `json:"message,omitempty" yaml:"message,omitempty"`
	Coordinates *geo.Coordinates   `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Layout      materialize.Layout `json:"layout" yaml:"layout"`
	Report      ReportArgs         `json:"report" yaml:"report"`
	Retry       RetryArgs          `json:"retry" yaml:"retry"`

	location string
}

// 🏭 Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 📂 LoadOrDefault loads path, falling back to defaults when the file is
// missing and was not explicitly asked for
func LoadOrDefault(ctx context.Context, path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) && !explicit {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no config file, using defaults")
		return Default(), nil
	}
	return Load(ctx, path)
}

// Location is the file this config was loaded from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks if the configuration is valid and fills defaults
func (cfg *Config) Validate() error {
	// Clean up paths
	if cfg.Source != "" {
		cfg.Source = filepath.Clean(expandHome(cfg.Source))
	}
	if cfg.Destination == "" {
		cfg.Destination = "."
	}
	cfg.Destination = filepath.Clean(expandHome(cfg.Destination))

	// Set defaults
	if strings.TrimSpace(cfg.Message) == "" {
		cfg.Message = DefaultMessage
	}
	cfg.Layout = cfg.Layout.WithDefaults()

	def := discover.DefaultOptions()
	if len(cfg.Report.Names) == 0 {
		cfg.Report.Names = def.ReportNames
	}
	if cfg.Report.TitleMarker == "" {
		cfg.Report.TitleMarker = def.TitleMarker
	}
	if len(cfg.Report.SignatureTokens) == 0 {
		cfg.Report.SignatureTokens = def.SignatureTokens
	}
	if len(cfg.Report.ImagePatterns) == 0 {
		cfg.Report.ImagePatterns = def.ImagePatterns
	}
	if cfg.Report.IgnorePatterns == nil {
		cfg.Report.IgnorePatterns = def.IgnorePatterns
	}

	if cfg.Retry.Attempts == nil {
		n := materialize.DefaultRetries
		cfg.Retry.Attempts = &n
	}
	if cfg.Retry.DelayMS == nil {
		n := int(materialize.DefaultDelay / time.Millisecond)
		cfg.Retry.DelayMS = &n
	}

	// Check values
	if *cfg.Retry.Attempts < 0 {
		return errors.Errorf("retry.attempts must not be negative: %d", *cfg.Retry.Attempts)
	}
	if *cfg.Retry.DelayMS < 0 {
		return errors.Errorf("retry.delay_ms must not be negative: %d", *cfg.Retry.DelayMS)
	}
	if cfg.Coordinates != nil {
		if err := cfg.Coordinates.Validate(); err != nil {
			return errors.Errorf("coordinates: %w", err)
		}
	}
	if err := cfg.Layout.Validate(); err != nil {
		return err
	}

	return nil
}

// expandHome resolves a leading ~ the way a shell would
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

// ⚙️ Overrides are values given on the command line, nil means not given
type Overrides struct {
	Source      *string
	Destination *string
	Message     *string
	Clean       *bool
	Commit      *bool
	Push        *bool
	Lon         *float64
	Lat         *float64
}

// Apply lays command line values over the loaded config and validates again
func (cfg *Config) Apply(o Overrides) error {
	if o.Source != nil {
		cfg.Source = *o.Source
	}
	if o.Destination != nil {
		cfg.Destination = *o.Destination
	}
	if o.Message != nil {
		cfg.Message = *o.Message
	}
	if o.Clean != nil {
		cfg.Clean = *o.Clean
	}
	if o.Commit != nil {
		cfg.Commit = *o.Commit
	}
	if o.Push != nil {
		cfg.Push = *o.Push
	}

	switch {
	case o.Lon != nil && o.Lat != nil:
		cfg.Coordinates = &geo.Coordinates{Lon: *o.Lon, Lat: *o.Lat}
	case o.Lon != nil || o.Lat != nil:
		return errors.New("--lon and --lat must be given together")
	}

	return cfg.Validate()
}

// RetryDelay is the configured wait between lock retries
func (cfg *Config) RetryDelay() time.Duration {
	if cfg.Retry.DelayMS == nil {
		return materialize.DefaultDelay
	}
	return time.Duration(*cfg.Retry.DelayMS) * time.Millisecond
}

// RetryAttempts is the configured number of lock retries
func (cfg *Config) RetryAttempts() int {
	if cfg.Retry.Attempts == nil {
		return materialize.DefaultRetries
	}
	return *cfg.Retry.Attempts
}

// 🔍 DiscoverOptions is the classification this config asks for
func (cfg *Config) DiscoverOptions() discover.Options {
	return discover.Options{
		ReportNames:     cfg.Report.Names,
		TitleMarker:     cfg.Report.TitleMarker,
		SignatureTokens: cfg.Report.SignatureTokens,
		ImagePatterns:   cfg.Report.ImagePatterns,
		IgnorePatterns:  cfg.Report.IgnorePatterns,
	}
}

// 🏗️ MaterializeOptions is how this config asks the destination to be written
func (cfg *Config) MaterializeOptions() materialize.Options {
	return materialize.Options{
		Layout:      cfg.Layout,
		Clean:       cfg.Clean,
		Coordinates: cfg.Coordinates,
		Retries:     cfg.RetryAttempts(),
		Delay:       cfg.RetryDelay(),
	}
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	src := cfg.Source
	if src == "" {
		src = "<no source>"
	}
	return fmt.Sprintf("%s -> %s (%s)", src, cfg.Destination, cfg.Layout.HealthcardsDir)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

// 📝 Parse parses the config from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		// an empty file decodes to io.EOF
		if len(bytes.TrimSpace(data)) == 0 {
			return &cfg, nil
		}
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
