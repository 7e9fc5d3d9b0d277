package internal

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultCapacity     = 2
	DefaultDebounceWait = 200 * time.Millisecond
)

type DebounceMode uint8

const (
	// DebounceEnd admits the last proposal once the window goes quiet.
	DebounceEnd DebounceMode = iota
	// DebounceStart admits the first proposal of a window and drops the rest.
	DebounceStart
	// DebounceBoth admits the first proposal and, if more followed, the last.
	DebounceBoth
)

func (m DebounceMode) String() string {
	switch m {
	case DebounceStart:
		return "start"
	case DebounceBoth:
		return "both"
	default:
		return "end"
	}
}

func (m DebounceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *DebounceMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "start":
		*m = DebounceStart
	case "end":
		*m = DebounceEnd
	case "both":
		*m = DebounceBoth
	default:
		return fmt.Errorf("unknown debounce mode %q", text)
	}
	return nil
}

// Settings holds the mergeable part of a unit configuration. Nil fields are
// left to the next layer.
type Settings struct {
	Replay               *bool          `toml:"replay" yaml:"replay"`
	Capacity             *int           `toml:"capacity" yaml:"capacity"`
	Immutable            *bool          `toml:"immutable" yaml:"immutable"`
	DistinctCheck        *bool          `toml:"distinct_check" yaml:"distinct_check"`
	CheckSerializability *bool          `toml:"check_serializability" yaml:"check_serializability"`
	Debounce             *time.Duration `toml:"debounce" yaml:"debounce"`
	DebounceMode         *DebounceMode  `toml:"debounce_mode" yaml:"debounce_mode"`
}

// Defaults are global and per-kind settings applied below instance options.
type Defaults struct {
	Global  Settings `toml:"global" yaml:"global"`
	Bool    Settings `toml:"bool" yaml:"bool"`
	Number  Settings `toml:"number" yaml:"number"`
	String  Settings `toml:"string" yaml:"string"`
	Dict    Settings `toml:"dict" yaml:"dict"`
	List    Settings `toml:"list" yaml:"list"`
	Generic Settings `toml:"generic" yaml:"generic"`
}

func (d *Defaults) ForKind(k Kind) Settings {
	if d == nil {
		return Settings{}
	}

	switch k {
	case KindBool:
		return d.Bool
	case KindNumber:
		return d.Number
	case KindString:
		return d.String
	case KindDict:
		return d.Dict
	case KindList:
		return d.List
	default:
		return d.Generic
	}
}

func (d *Defaults) Validate() error {
	if d == nil {
		return nil
	}

	for _, s := range []Settings{d.Global, d.Bool, d.Number, d.String, d.Dict, d.List, d.Generic} {
		if s.Capacity != nil && *s.Capacity < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidCapacity, *s.Capacity)
		}
	}

	return nil
}

// Resolve merges global defaults, per-kind defaults and instance overrides,
// later layers winning.
func Resolve(global, kind, instance Settings) Settings {
	out := global
	for _, layer := range []Settings{kind, instance} {
		if layer.Replay != nil {
			out.Replay = layer.Replay
		}
		if layer.Capacity != nil {
			out.Capacity = layer.Capacity
		}
		if layer.Immutable != nil {
			out.Immutable = layer.Immutable
		}
		if layer.DistinctCheck != nil {
			out.DistinctCheck = layer.DistinctCheck
		}
		if layer.CheckSerializability != nil {
			out.CheckSerializability = layer.CheckSerializability
		}
		if layer.Debounce != nil {
			out.Debounce = layer.Debounce
		}
		if layer.DebounceMode != nil {
			out.DebounceMode = layer.DebounceMode
		}
	}

	return out
}

// Options collects what the public Option functions set.
type Options struct {
	ID       string
	Settings Settings
	Defaults *Defaults

	CustomCheck    func(current, next any) bool
	Store          Store
	CoalesceWrites bool

	Initial    any
	HasInitial bool

	Logger   *zerolog.Logger
	Observer Observer
}

// Config is the frozen configuration a unit runs with.
type Config struct {
	ID   string
	Kind Kind

	Replay               bool
	Capacity             int
	Immutable            bool
	DistinctCheck        bool
	CheckSerializability bool
	Debounce             time.Duration
	DebounceMode         DebounceMode

	CustomCheck func(current, next any) bool
	Store       Store
	// CoalesceWrites defers store writes until the outermost operation settles.
	CoalesceWrites bool

	Initial    any
	HasInitial bool

	// Default is the typed empty value, Decode turns persisted JSON into a value.
	Default any
	Decode  func([]byte) (any, error)

	Logger   zerolog.Logger
	Observer Observer
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)

func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// NewConfig validates o and resolves it into a Config.
func NewConfig(kind Kind, def any, decode func([]byte) (any, error), o Options) (Config, error) {
	if o.ID != "" {
		if err := ValidateID(o.ID); err != nil {
			return Config{}, err
		}
	}
	if o.Store != nil && o.ID == "" {
		return Config{}, ErrPersistenceWithoutID
	}

	s := Resolve(o.Defaults.ForGlobal(), o.Defaults.ForKind(kind), o.Settings)

	cfg := Config{
		ID:       o.ID,
		Kind:     kind,
		Replay:   true,
		Capacity: DefaultCapacity,

		CustomCheck:    o.CustomCheck,
		Store:          o.Store,
		CoalesceWrites: o.CoalesceWrites,
		Initial:        o.Initial,
		HasInitial:     o.HasInitial,
		Default:        def,
		Decode:         decode,
		Logger:         zerolog.Nop(),
		Observer:       o.Observer,
	}
	if o.Logger != nil {
		cfg.Logger = *o.Logger
	}

	if s.Replay != nil {
		cfg.Replay = *s.Replay
	}
	if s.Capacity != nil {
		if *s.Capacity < 1 {
			return Config{}, fmt.Errorf("%w: %d", ErrInvalidCapacity, *s.Capacity)
		}
		cfg.Capacity = *s.Capacity
	}
	if s.Immutable != nil {
		cfg.Immutable = *s.Immutable
	}
	if s.DistinctCheck != nil {
		cfg.DistinctCheck = *s.DistinctCheck
	}
	if s.CheckSerializability != nil {
		cfg.CheckSerializability = *s.CheckSerializability
	}
	if s.Debounce != nil && *s.Debounce >= 0 {
		cfg.Debounce = *s.Debounce
		if cfg.Debounce == 0 {
			cfg.Debounce = DefaultDebounceWait
		}
	}
	if s.DebounceMode != nil {
		cfg.DebounceMode = *s.DebounceMode
	}

	return cfg, nil
}

func (d *Defaults) ForGlobal() Settings {
	if d == nil {
		return Settings{}
	}
	return d.Global
}
