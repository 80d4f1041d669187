// Package engine orchestrates the decision pipeline: global disable,
// allowlist, tool-dispatched analyzer, safety-level gating, audit
// write, decision. This is the glue described in spec.md §4.5 — no
// analysis logic of its own lives here beyond severity selection.
package engine

import (
	"fmt"
	"os"

	"github.com/gzhole/guardrails/internal/allowlist"
	"github.com/gzhole/guardrails/internal/audit"
	"github.com/gzhole/guardrails/internal/config"
	"github.com/gzhole/guardrails/internal/path"
	"github.com/gzhole/guardrails/internal/rules"
	"github.com/gzhole/guardrails/internal/shell"
)

// ToolKind is the small, finite variant set a ToolCall can carry.
// Dispatch on it as a tagged union, not open-ended polymorphism.
type ToolKind string

const (
	KindBash    ToolKind = "Bash"
	KindRead    ToolKind = "Read"
	KindEdit    ToolKind = "Edit"
	KindWrite   ToolKind = "Write"
	KindUnknown ToolKind = ""
)

// ToolCall is the input unit: a tool kind plus a kind-dependent payload.
type ToolCall struct {
	Kind    ToolKind
	Command string // set when Kind == KindBash
	Path    string // set when Kind is a file tool
	Cwd     string
}

// Verdict is one of the three possible decision outcomes.
type Verdict string

const (
	Allow Verdict = "allow"
	Deny  Verdict = "deny"
	Warn  Verdict = "warn"
)

// Decision is the output unit: exactly one verdict, a rule id present
// iff the verdict is not allow.
type Decision struct {
	Verdict      Verdict
	RuleID       string
	Reason       string
	InputSummary string
}

// Engine holds the process-global, read-only state: configuration and
// the loaded allowlist. Construct it explicitly via New so tests can
// build engines against synthetic configuration rather than reaching
// for a hidden singleton.
type Engine struct {
	Config    *config.Config
	Allowlist *allowlist.Allowlist
	Audit     *audit.Logger
}

// New wires a ready-to-use engine from already-loaded configuration,
// allowlist, and audit logger.
func New(cfg *config.Config, al *allowlist.Allowlist, logger *audit.Logger) *Engine {
	return &Engine{Config: cfg, Allowlist: al, Audit: logger}
}

// Decide runs the full pipeline for a single tool call and, if auditing
// is enabled, appends the corresponding audit record.
func (e *Engine) Decide(call ToolCall) Decision {
	summary := inputSummary(call)

	decision := e.decide(call, summary)

	if e.Config.AuditLog && e.Audit != nil {
		rec := audit.Record{
			Timestamp:    audit.Now(),
			Level:        string(decision.Verdict),
			Tool:         string(call.Kind),
			RuleID:       decision.RuleID,
			InputSummary: summary,
			Reason:       decision.Reason,
		}
		if err := e.Audit.Log(rec); err != nil {
			fmt.Fprintf(os.Stderr, "guardrails: audit write failed: %v\n", err)
		}
	}

	return decision
}

func (e *Engine) decide(call ToolCall, summary string) Decision {
	// (i) Global disable short-circuits to allow but is still audited
	// with the disabled note.
	if e.Config.Disabled {
		return Decision{Verdict: Allow, Reason: "guardrails disabled (disabled=true)", InputSummary: summary}
	}

	// (ii) Allowlist is consulted before any rule check and can only
	// grant allow, never deny.
	if e.Allowlist != nil {
		scopeTool := allowlistTool(call.Kind)
		text := call.Command
		if call.Kind != KindBash {
			text = call.Path
		}
		if reason, ok := e.Allowlist.Match(scopeTool, text); ok {
			return Decision{Verdict: Allow, Reason: reason, InputSummary: summary}
		}
	}

	// (iii) Tool-dispatched analyzer.
	var worst *hitLike
	switch call.Kind {
	case KindBash:
		worst = worstShellHit(call.Command, e.shellOptions())
	case KindRead, KindEdit, KindWrite:
		worst = worstPathHit(call.Path, call.Cwd, e.Config.SafetyLevel)
	default:
		return Decision{Verdict: Allow, Reason: "tool not checked", InputSummary: summary}
	}

	if worst == nil {
		return Decision{Verdict: Allow, InputSummary: summary}
	}

	// (iv) In dry-run/warn-only mode a would-be deny becomes a warn.
	verdict := Deny
	if e.Config.DryRun {
		verdict = Warn
	}

	return Decision{Verdict: verdict, RuleID: worst.RuleID, Reason: worst.Message, InputSummary: summary}
}

func (e *Engine) shellOptions() shell.Options {
	return shell.Options{
		ExtraWrappers:         e.Config.ExtraWrappers,
		BlockVariableCommands: e.Config.BlockVariableCommands,
		BlockPipeToShell:      e.Config.BlockPipeToShell,
		SafetyLevel:           e.Config.SafetyLevel,
		MaxCommandBytes:       100 * 1024,
		MaxPipelineDepth:      32,
	}
}

func allowlistTool(kind ToolKind) allowlist.Tool {
	switch kind {
	case KindBash:
		return allowlist.ToolBash
	case KindRead:
		return allowlist.ToolRead
	case KindEdit:
		return allowlist.ToolEdit
	case KindWrite:
		return allowlist.ToolWrite
	default:
		return allowlist.Tool(kind)
	}
}

// hitLike is a minimal common shape for shell.Hit and path.Hit so the
// engine can pick the single worst hit without depending on either
// analyzer package's concrete hit type beyond what severity selection
// needs.
type hitLike struct {
	RuleID   string
	Severity rules.SafetyLevel
	Message  string
}

func worstShellHit(command string, opts shell.Options) *hitLike {
	hits := shell.Analyze(command, opts)
	return worstOf(hits, func(h shell.Hit) hitLike {
		return hitLike{RuleID: h.RuleID, Severity: h.Severity, Message: h.Message}
	})
}

func worstPathHit(p, cwd string, level rules.SafetyLevel) *hitLike {
	hits := path.Analyze(p, cwd, level)
	return worstOf(hits, func(h path.Hit) hitLike {
		return hitLike{RuleID: h.RuleID, Severity: h.Severity, Message: h.Message}
	})
}

// worstOf picks the highest-severity hit, breaking ties by corpus
// order (first occurrence wins), per spec.md §4.3's severity-selection
// rule.
func worstOf[T any](hits []T, toHitLike func(T) hitLike) *hitLike {
	var best *hitLike
	for _, h := range hits {
		hl := toHitLike(h)
		if best == nil || hl.Severity < best.Severity {
			best = &hl
		}
	}
	return best
}

func inputSummary(call ToolCall) string {
	if call.Kind == KindBash {
		return call.Command
	}
	return call.Path
}
