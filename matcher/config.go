package matcher

import "fmt"

// EngineKind selects the per-character loop variant.
type EngineKind uint8

const (
	// Default runs the general DFA transition on every byte.
	Default EngineKind = iota
	// Fastpath additionally checks a 128-entry ASCII start-byte table
	// before falling into the general DFA transition, and pools the
	// per-character scratch map across Match calls.
	Fastpath
)

func (k EngineKind) String() string {
	switch k {
	case Default:
		return "Default"
	case Fastpath:
		return "Fastpath"
	default:
		return fmt.Sprintf("EngineKind(%d)", uint8(k))
	}
}

// PrefilterKind selects whether the Aho-Corasick prefilter gate ever
// participates in a match run.
type PrefilterKind uint8

const (
	// Auto consults the prefilter only once the registry holds at least
	// PrefilterThreshold patterns.
	Auto PrefilterKind = iota
	// Disabled never consults the prefilter, regardless of pattern
	// count.
	Disabled
)

func (k PrefilterKind) String() string {
	switch k {
	case Auto:
		return "Auto"
	case Disabled:
		return "Disabled"
	default:
		return fmt.Sprintf("PrefilterKind(%d)", uint8(k))
	}
}

// Config configures a Matcher. The zero value is not valid; use
// DefaultConfig and the fluent With* setters.
type Config struct {
	Engine             EngineKind
	Prefilter          PrefilterKind
	PrefilterThreshold uint32
	MaxDFANodes        uint32
}

// DefaultConfig returns the configuration a Matcher uses when none is
// supplied: the general engine, prefilter auto-enabled once the pattern
// count reaches a threshold in the low thousands, and no cap on DFA node count.
func DefaultConfig() Config {
	return Config{
		Engine:             Default,
		Prefilter:          Auto,
		PrefilterThreshold: 2000,
		MaxDFANodes:        0,
	}
}

// WithEngine returns a copy of c with Engine set to k.
func (c Config) WithEngine(k EngineKind) Config {
	c.Engine = k
	return c
}

// WithPrefilter returns a copy of c with Prefilter set to k.
func (c Config) WithPrefilter(k PrefilterKind) Config {
	c.Prefilter = k
	return c
}

// WithPrefilterThreshold returns a copy of c with PrefilterThreshold set
// to n.
func (c Config) WithPrefilterThreshold(n uint32) Config {
	c.PrefilterThreshold = n
	return c
}

// WithMaxDFANodes returns a copy of c with MaxDFANodes set to n. n == 0
// means unbounded.
func (c Config) WithMaxDFANodes(n uint32) Config {
	c.MaxDFANodes = n
	return c
}

// Validate reports whether c is usable, returning a *ConfigError
// describing the first problem found.
func (c Config) Validate() error {
	if c.Engine != Default && c.Engine != Fastpath {
		return &ConfigError{Field: "Engine", Reason: fmt.Sprintf("unknown engine kind %v", c.Engine)}
	}
	if c.Prefilter != Auto && c.Prefilter != Disabled {
		return &ConfigError{Field: "Prefilter", Reason: fmt.Sprintf("unknown prefilter kind %v", c.Prefilter)}
	}
	if c.Prefilter == Auto && c.PrefilterThreshold == 0 {
		return &ConfigError{Field: "PrefilterThreshold", Reason: "must be > 0 when Prefilter is Auto"}
	}
	return nil
}

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("matcher: invalid config field %s: %s", e.Field, e.Reason)
}
