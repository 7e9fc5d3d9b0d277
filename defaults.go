package unit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/unit/internal"
)

// Defaults holds global and per-kind settings. Instance options always win
// over per-kind settings, which win over global ones.
//
//	[global]
//	capacity = 10
//
//	[dict]
//	immutable = true
//	debounce = "50ms"
type Defaults = internal.Defaults

var ErrUnknownFormat = errors.New("unknown defaults format")

// LoadDefaults reads Defaults from a .toml, .yaml or .yml file. Unknown keys
// are an error.
func LoadDefaults(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}

	var d *Defaults
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		d, err = ParseDefaultsTOML(data)
	case ".yaml", ".yml":
		d, err = ParseDefaultsYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return d, nil
}

func ParseDefaultsTOML(data []byte) (*Defaults, error) {
	var d Defaults
	meta, err := toml.Decode(string(data), &d)
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode toml: unknown key %q", undecoded[0].String())
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func ParseDefaultsYAML(data []byte) (*Defaults, error) {
	var d Defaults

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
