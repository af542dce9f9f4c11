package cmd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/cartformat/cart"
	"github.com/cartformat/cart/compress"
)

// Config holds the optional yaml configuration shared by the subcommands.
// Flags always win over config values.
type Config struct {
	// Key is the obfuscation key as 32 hex digits.
	Key string `yaml:"key"`
	// Compression is one of zlib, none or zstd.
	Compression string `yaml:"compression"`
	// DefaultHeader is merged into the header metadata of every pack,
	// with values from -meta taking precedence.
	DefaultHeader map[string]any `yaml:"default_header"`
}

const defaultConfigName = ".cart.yaml"

// loadConfig reads the yaml config at path. An empty path selects
// ~/.cart.yaml, which may be absent; an explicitly named file must exist.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(home, defaultConfigName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &conf, nil
}

// buildOptions turns the config and flag values into codec options.
func buildOptions(conf *Config, keyFlag, compressionFlag string) (*cart.Options, error) {
	opts := &cart.Options{}

	keyHex := conf.Key
	if keyFlag != "" {
		keyHex = keyFlag
	}
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid key: %w", err)
		}
		opts.Key = key
	}

	modeName := conf.Compression
	if compressionFlag != "" {
		modeName = compressionFlag
	}
	if modeName != "" {
		mode, err := compress.ParseMode(modeName)
		if err != nil {
			return nil, err
		}
		opts.Compression = mode
	}

	return opts, nil
}

// mergeHeaderMeta combines the config's default header metadata with the
// -meta flag value and returns the merged object as JSON text. Flag fields
// override config fields of the same name.
func mergeHeaderMeta(conf *Config, metaFlag string) ([]byte, error) {
	merged := make(map[string]any, len(conf.DefaultHeader))
	for k, v := range conf.DefaultHeader {
		merged[k] = v
	}
	if metaFlag != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(metaFlag), &meta); err != nil {
			return nil, fmt.Errorf("invalid -meta json: %w", err)
		}
		for k, v := range meta {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return nil, nil
	}
	return json.Marshal(merged)
}
