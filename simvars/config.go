package simvars

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned for a settings file that parses but can't
// describe a panel.
var ErrInvalidConfig = errors.New("invalid panel config")

// Placement is one instrument entry in the settings file.
type Placement struct {
	Kind string `toml:"kind"`
	X    int    `toml:"x"`
	Y    int    `toml:"y"`
	Size int    `toml:"size"`
}

// Config is the persisted panel layout.
type Config struct {
	EnableShadows bool                 `toml:"enable_shadows"`
	AssetDir      string               `toml:"asset_dir"`
	Telemetry     string               `toml:"telemetry,omitempty"`
	Instruments   map[string]Placement `toml:"instruments"`
}

// DefaultConfig lays a VSI and an oil gauge side by side.
func DefaultConfig() Config {
	return Config{
		EnableShadows: true,
		AssetDir:      "assets",
		Instruments: map[string]Placement{
			"VSI": {Kind: "vsi", X: 0, Y: 0, Size: 400},
			"Oil": {Kind: "oil", X: 400, Y: 0, Size: 400},
		},
	}
}

// Names returns the instrument names in a stable order.
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Instruments))
	for name := range c.Instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Config) Validate() error {
	for _, name := range c.Names() {
		p := c.Instruments[name]
		if p.Kind == "" {
			return fmt.Errorf("%w: instrument %q has no kind", ErrInvalidConfig, name)
		}
		if p.Size <= 0 {
			return fmt.Errorf("%w: instrument %q has size %d", ErrInvalidConfig, name, p.Size)
		}
	}
	return nil
}

// LoadConfig reads and validates a settings file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// SaveConfig writes c to path by way of a temporary file, so a watcher
// never sees a half-written file.
func SaveConfig(path string, c Config) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadOrCreateConfig loads path, writing DefaultConfig there first if the
// file does not exist.
func LoadOrCreateConfig(path string) (Config, error) {
	c, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		c = DefaultConfig()
		if err := SaveConfig(path, c); err != nil {
			return c, err
		}
		return c, nil
	}
	return c, err
}
