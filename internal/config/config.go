// Package config loads guardrails configuration from TOML, environment
// variables, and CLI flags, in that precedence order (CLI > env > file
// > defaults).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/gzhole/guardrails/internal/rules"
)

// DefaultConfigTOML seeds a fresh ~/.claude/guardrails/config.toml.
const DefaultConfigTOML = `# guardrails configuration file

[general]
safety_level = "high"
audit_log = true
audit_path = ""

[bash]
wrappers = []
block_variable_commands = true
block_pipe_to_shell = true

[files]
protected_patterns = []
`

type generalSection struct {
	SafetyLevel string `toml:"safety_level"`
	AuditLog    bool   `toml:"audit_log"`
	AuditPath   string `toml:"audit_path"`
}

type bashSection struct {
	Wrappers              []string `toml:"wrappers"`
	BlockVariableCommands bool     `toml:"block_variable_commands"`
	BlockPipeToShell      bool     `toml:"block_pipe_to_shell"`
}

type filesSection struct {
	ProtectedPatterns []string `toml:"protected_patterns"`
}

type fileConfig struct {
	General generalSection `toml:"general"`
	Bash    bashSection    `toml:"bash"`
	Files   filesSection   `toml:"files"`
}

// Config is the fully resolved, process-global configuration handle.
// Construct it once at startup via Load and pass it explicitly; do not
// reach for a hidden singleton.
type Config struct {
	SafetyLevel           rules.SafetyLevel
	AuditLog              bool
	AuditPath             string
	ExtraWrappers         []string
	BlockVariableCommands bool
	BlockPipeToShell      bool
	ExtraProtectedPaths   []*regexp.Regexp
	DryRun                bool
	Disabled              bool
	ConfigErrors          []string
}

// Default returns the built-in configuration with no file or env
// overrides applied.
func Default() *Config {
	return &Config{
		SafetyLevel:           rules.High,
		AuditLog:              true,
		AuditPath:             defaultAuditPath(),
		BlockVariableCommands: true,
		BlockPipeToShell:      true,
	}
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude/guardrails"
	}
	return filepath.Join(home, ".claude", "guardrails")
}

func defaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.toml")
}

func defaultAuditPath() string {
	return filepath.Join(defaultConfigDir(), "audit.jsonl")
}

// Overrides carries CLI-flag-sourced values, which take top precedence.
type Overrides struct {
	ConfigPath  string
	SafetyLevel string
	DryRun      bool
}

// Load resolves configuration with precedence CLI > env > file >
// defaults. A malformed config file does not abort the process: it
// falls back to defaults and the problem is recorded in ConfigErrors
// so the caller can surface it on the audit record's reason field,
// per the fail-closed-but-not-fail-crashing error policy.
func Load(ov Overrides) *Config {
	cfg := Default()

	path := ov.ConfigPath
	if path == "" {
		path = defaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		fc := fileConfigFromDefaults(cfg)
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			cfg.ConfigErrors = append(cfg.ConfigErrors, fmt.Sprintf("malformed config at %s: %v", path, err))
		} else {
			applyFileConfig(cfg, fc)
		}
	}

	applyEnvOverrides(cfg)
	applyFlagOverrides(cfg, ov)

	return cfg
}

// fileConfigFromDefaults seeds a fileConfig with cfg's current values so
// that decoding a config.toml which omits a key leaves that field at its
// default rather than zeroing it out. toml.DecodeFile only overwrites
// keys actually present in the file, so the seeded values survive for
// anything the file doesn't mention.
func fileConfigFromDefaults(cfg *Config) fileConfig {
	return fileConfig{
		General: generalSection{
			SafetyLevel: cfg.SafetyLevel.String(),
			AuditLog:    cfg.AuditLog,
			AuditPath:   cfg.AuditPath,
		},
		Bash: bashSection{
			Wrappers:              cfg.ExtraWrappers,
			BlockVariableCommands: cfg.BlockVariableCommands,
			BlockPipeToShell:      cfg.BlockPipeToShell,
		},
	}
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.General.SafetyLevel != "" {
		cfg.SafetyLevel = rules.ParseSafetyLevel(fc.General.SafetyLevel)
	}
	cfg.AuditLog = fc.General.AuditLog
	if fc.General.AuditPath != "" {
		cfg.AuditPath = fc.General.AuditPath
	}
	cfg.ExtraWrappers = fc.Bash.Wrappers
	cfg.BlockVariableCommands = fc.Bash.BlockVariableCommands
	cfg.BlockPipeToShell = fc.Bash.BlockPipeToShell

	for _, pat := range fc.Files.ProtectedPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			cfg.ConfigErrors = append(cfg.ConfigErrors, fmt.Sprintf("invalid protected_patterns entry %q: %v", pat, err))
			continue
		}
		cfg.ExtraProtectedPaths = append(cfg.ExtraProtectedPaths, re)
	}
}

func applyEnvOverrides(cfg *Config) {
	if os.Getenv("GUARDRAILS_DISABLED") == "1" {
		cfg.Disabled = true
	}
	if os.Getenv("GUARDRAILS_WARN_ONLY") == "1" {
		cfg.DryRun = true
	}
}

func applyFlagOverrides(cfg *Config, ov Overrides) {
	if ov.SafetyLevel != "" {
		cfg.SafetyLevel = rules.ParseSafetyLevel(ov.SafetyLevel)
	}
	if ov.DryRun {
		cfg.DryRun = true
	}
}

// AllowlistPath is fixed per spec, not user-configurable.
func AllowlistPath() string {
	return filepath.Join(defaultConfigDir(), "allow.toml")
}

// EnsureConfigDir creates ~/.claude/guardrails with owner-only
// permissions if it does not already exist.
func EnsureConfigDir() error {
	dir := defaultConfigDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0700)
	}
	return nil
}
