// Copyright 2026 The unisencoder Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config contains the configuration of the unisencoder tool.
package config

import (
	"io"
	"net/url"
	"time"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/log"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/private/util"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/private/config"
)

// Defaults.
const (
	DefaultIndent    = 2
	DefaultUNISURL   = "http://localhost:8888"
	DefaultEndpoint  = "topologies"
	DefaultTimeout   = 10 * time.Second
	DefaultLedger    = "unisencoder.ledger.db"
	DefaultWorkers   = 4
	defaultMaxIndent = 16
)

var _ config.Config = (*Config)(nil)

// Config is the unisencoder configuration.
type Config struct {
	Logging  log.Config `toml:"log,omitempty"`
	Encoder  Encoder    `toml:"encoder,omitempty"`
	UNIS     UNIS       `toml:"unis,omitempty"`
	Dispatch Dispatch   `toml:"dispatch,omitempty"`
	Metrics  Metrics    `toml:"metrics,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.Logging,
		&cfg.Encoder,
		&cfg.UNIS,
		&cfg.Dispatch,
		&cfg.Metrics,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.Logging,
		&cfg.Encoder,
		&cfg.UNIS,
		&cfg.Dispatch,
		&cfg.Metrics,
	)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, nil,
		&cfg.Logging,
		&cfg.Encoder,
		&cfg.UNIS,
		&cfg.Dispatch,
		&cfg.Metrics,
	)
}

// Load reads, defaults and validates the configuration in file. An empty
// file name yields the default configuration.
func Load(file string) (*Config, error) {
	var cfg Config
	if file != "" {
		if err := config.LoadFile(file, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, serrors.Wrap("validating config", err, "file", file)
	}
	return &cfg, nil
}

// Encoder holds the encoder settings.
type Encoder struct {
	// SchemaVersion selects the UNIS schema set (20120709|20140214).
	SchemaVersion string `toml:"schema_version,omitempty"`
	// FailOnUnhandled turns unhandled elements into errors.
	FailOnUnhandled bool `toml:"fail_on_unhandled,omitempty"`
	// LookupCacheSize is the size of the reference lookup cache.
	LookupCacheSize int `toml:"lookup_cache_size,omitempty"`
	// Indent is the number of spaces JSON output is indented with.
	Indent int `toml:"indent,omitempty"`
	// Workers is the number of files encoded concurrently by encode and
	// summary.
	Workers int `toml:"workers,omitempty"`
}

func (cfg *Encoder) InitDefaults() {
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = string(unis.DefaultVersion)
	}
	if cfg.LookupCacheSize == 0 {
		cfg.LookupCacheSize = encoder.DefaultLookupCacheSize
	}
	if cfg.Indent == 0 {
		cfg.Indent = DefaultIndent
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
}

func (cfg *Encoder) Validate() error {
	if _, err := unis.ParseVersion(cfg.SchemaVersion); err != nil {
		return err
	}
	if cfg.LookupCacheSize < 0 {
		return serrors.New("negative lookup cache size", "size", cfg.LookupCacheSize)
	}
	if cfg.Indent < 0 || cfg.Indent > defaultMaxIndent {
		return serrors.New("indent out of range", "indent", cfg.Indent)
	}
	if cfg.Workers < 1 {
		return serrors.New("workers must be positive", "workers", cfg.Workers)
	}
	return nil
}

// Version returns the configured schema version. It must only be called on a
// validated config.
func (cfg *Encoder) Version() unis.Version {
	v, _ := unis.ParseVersion(cfg.SchemaVersion)
	return v
}

// Options returns the encoder options for cfg.
func (cfg *Encoder) Options() []encoder.Option {
	return []encoder.Option{
		encoder.WithSchemaVersion(cfg.Version()),
		encoder.WithFailOnUnhandled(cfg.FailOnUnhandled),
		encoder.WithLookupCacheSize(cfg.LookupCacheSize),
	}
}

func (cfg *Encoder) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, encoderSample)
}

func (cfg *Encoder) ConfigName() string {
	return "encoder"
}

// UNIS holds the location of the UNIS service.
type UNIS struct {
	// URL is the base URL of the service.
	URL string `toml:"url,omitempty"`
	// Endpoint is the collection documents are posted to.
	Endpoint string `toml:"endpoint,omitempty"`
	// Timeout of a single upload.
	Timeout util.DurWrap `toml:"timeout,omitempty"`
}

func (cfg *UNIS) InitDefaults() {
	if cfg.URL == "" {
		cfg.URL = DefaultUNISURL
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout.Duration == 0 {
		cfg.Timeout.Duration = DefaultTimeout
	}
}

func (cfg *UNIS) Validate() error {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return serrors.Wrap("parsing UNIS url", err, "url", cfg.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return serrors.New("unsupported UNIS url scheme", "url", cfg.URL)
	}
	if cfg.Timeout.Duration < 0 {
		return serrors.New("negative timeout", "timeout", cfg.Timeout)
	}
	return nil
}

func (cfg *UNIS) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, unisSample)
}

func (cfg *UNIS) ConfigName() string {
	return "unis"
}

// Dispatch holds the dispatcher settings.
type Dispatch struct {
	// Ledger is the sqlite file recording uploaded files.
	Ledger string `toml:"ledger,omitempty"`
	// Workers is the number of files dispatched concurrently.
	Workers int `toml:"workers,omitempty"`
}

func (cfg *Dispatch) InitDefaults() {
	if cfg.Ledger == "" {
		cfg.Ledger = DefaultLedger
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
}

func (cfg *Dispatch) Validate() error {
	if cfg.Workers < 1 {
		return serrors.New("workers must be positive", "workers", cfg.Workers)
	}
	return nil
}

func (cfg *Dispatch) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, dispatchSample)
}

func (cfg *Dispatch) ConfigName() string {
	return "dispatch"
}

// Metrics holds the metrics export settings.
type Metrics struct {
	config.NoDefaulter
	config.NoValidator

	// Textfile is the file the metrics are written to on exit, in the
	// prometheus text format. Empty disables the export.
	Textfile string `toml:"textfile,omitempty"`
}

func (cfg *Metrics) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}
