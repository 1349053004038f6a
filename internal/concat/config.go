package concat

import "regexp"

// defaultInteractiveScheme is the scheme token substring that marks the
// distinguished interactive input cell when no override is configured.
const defaultInteractiveScheme = "vscode-interactive-input"

// EngineConfig holds the engine's construction-time knobs. There is no
// settings file behind it — a host process builds one EngineConfig once,
// the way internal/lsp/client.go's ClientConfig is built, not the way the
// editor's own user preferences are loaded from disk.
type EngineConfig struct {
	SuppressionEnabled bool
	HeaderText         string
	InteractiveScheme  string
	WordPattern        *regexp.Regexp
}

// EngineOption configures an EngineConfig.
type EngineOption func(*EngineConfig)

// DefaultConfig returns the engine's default configuration: suppression
// splitting enabled, no per-cell header text, the default interactive
// scheme token, and the default word-boundary pattern.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		SuppressionEnabled: true,
		HeaderText:         "",
		InteractiveScheme:  defaultInteractiveScheme,
		WordPattern:        defaultWordPattern,
	}
}

// WithSuppression enables or disables type-suppression span splitting.
func WithSuppression(enabled bool) EngineOption {
	return func(c *EngineConfig) {
		c.SuppressionEnabled = enabled
	}
}

// WithHeaderText sets a caller-provided string appended to the fixed header
// prelude on the document's first cell.
func WithHeaderText(text string) EngineOption {
	return func(c *EngineConfig) {
		c.HeaderText = text
	}
}

// WithInteractiveScheme overrides the scheme token that identifies the
// interactive input cell.
func WithInteractiveScheme(scheme string) EngineOption {
	return func(c *EngineConfig) {
		c.InteractiveScheme = scheme
	}
}

// WithWordPattern overrides the default word-boundary pattern used by
// WordRangeAtPosition when no per-call pattern is supplied. Neither this
// option nor Apply validates the pattern; one that matches the empty
// string is replaced by the default at use time (see resolveWordPattern in
// wordscan.go).
func WithWordPattern(pattern *regexp.Regexp) EngineOption {
	return func(c *EngineConfig) {
		c.WordPattern = pattern
	}
}

// Apply folds a list of options onto DefaultConfig.
func Apply(opts ...EngineOption) EngineConfig {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
