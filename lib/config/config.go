// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/qrcloak/lib/compression"
	"github.com/bureau-foundation/qrcloak/lib/format"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "QRCLOAK_CONFIG"

// Config holds the defaults for payload commands.
type Config struct {
	// Compression is the default compression: none, gzip, zstd or
	// lz4.
	Compression string `yaml:"compression" json:"compression"`

	// Splits is the default number of parts per payload. Zero or one
	// produces a single complete payload.
	Splits uint32 `yaml:"splits" json:"splits"`

	// Format is the wire format: json or cbor.
	Format string `yaml:"format" json:"format"`

	// Pretty indents JSON output.
	Pretty bool `yaml:"pretty" json:"pretty"`

	// Merge writes all payloads as one value instead of one per line.
	Merge bool `yaml:"merge" json:"merge"`

	// StateFile is where `payload merge` keeps unfinished groups
	// between runs. Empty disables persistence. ${HOME} and
	// ${VAR:-default} are expanded.
	StateFile string `yaml:"state_file" json:"state_file"`

	// MaxDecompressedSize bounds decompressed payloads, in bytes.
	MaxDecompressedSize int64 `yaml:"max_decompressed_size" json:"max_decompressed_size"`

	// ScryptWorkFactor is the log2 scrypt cost for passphrase
	// encryption. Zero selects age's default.
	ScryptWorkFactor int `yaml:"scrypt_work_factor" json:"scrypt_work_factor"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Compression:         "none",
		Format:              "json",
		MaxDecompressedSize: compression.DefaultMaxSize,
	}
}

// Load reads the file at path, or at $QRCLOAK_CONFIG when path is
// empty. With neither set it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads, expands and validates the file at path on top of the
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		err = cfg.decodeYAML(data)
	case ".json", ".jsonc":
		err = cfg.decodeJSONC(data)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml, .json or .jsonc)", path, extension)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.StateFile = expandVars(cfg.StateFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) decodeJSONC(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	return decoder.Decode(c)
}

// CompressionSpec returns the configured compression scheme.
func (c *Config) CompressionSpec() (format.CompressionSpec, error) {
	return compression.ParseSpec(c.Compression)
}

// WireFormat returns the configured wire format.
func (c *Config) WireFormat() (wire.Format, error) {
	return wire.ParseFormat(c.Format)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.CompressionSpec(); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}
	if _, err := c.WireFormat(); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	if c.MaxDecompressedSize <= 0 {
		errs = append(errs, fmt.Errorf("max_decompressed_size must be positive, got %d", c.MaxDecompressedSize))
	}
	if c.ScryptWorkFactor < 0 || c.ScryptWorkFactor > 30 {
		errs = append(errs, fmt.Errorf("scrypt_work_factor must be between 0 and 30, got %d", c.ScryptWorkFactor))
	}

	return errors.Join(errs...)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
