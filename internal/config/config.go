// Package config loads the optional JSON configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// FileName is the config file looked up in the data directory.
const FileName = "sim86.json"

// Config holds settings that flags may override.
type Config struct {
	Debug   bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	NoColor bool   `json:"noColor,omitempty" jsonschema:"title=No Color,description=Disable syntax highlighting of the listing"`
	LogFile string `json:"logFile,omitempty" jsonschema:"title=Log File,description=Write diagnostics to this file instead of stderr"`

	Origin  uint32 `json:"origin,omitempty" jsonschema:"title=Origin,description=Load address added to listing offsets,maximum=65535"`
	Header  bool   `json:"header,omitempty" jsonschema:"title=Header,description=Emit a bits 16 directive before the listing"`
	Offsets bool   `json:"offsets,omitempty" jsonschema:"title=Offsets,description=Annotate each line with its address and branch target"`
	Bytes   bool   `json:"bytes,omitempty" jsonschema:"title=Bytes,description=Annotate each line with its raw encoding"`
	Verify  bool   `json:"verify,omitempty" jsonschema:"title=Verify,description=Cross-check every instruction against the reference decoder"`
}

// Load reads path. A missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Origin > 0xFFFF {
		return cfg, fmt.Errorf("parse config %s: origin 0x%x exceeds 16 bits", path, cfg.Origin)
	}
	return cfg, nil
}

// DefaultPath returns the config file inside dataDir, or inside the user
// config directory when dataDir is empty.
func DefaultPath(dataDir string) (string, error) {
	if dataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(dir, "sim86")
	}
	return filepath.Join(dataDir, FileName), nil
}

// Schema returns the JSON schema of Config.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
