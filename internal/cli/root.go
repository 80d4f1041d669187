// Package cli wires the guardrails decision engine to the command line:
// it reads one JSON tool call from stdin, evaluates it, and writes one
// JSON decision to stdout per spec.md §6's I/O envelope.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gzhole/guardrails/internal/allowlist"
	"github.com/gzhole/guardrails/internal/audit"
	"github.com/gzhole/guardrails/internal/config"
	"github.com/gzhole/guardrails/internal/engine"
)

var (
	cfgPath     string
	safetyLevel string
	dryRun      bool
)

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "guardrails",
	Short:   "Pre-execution security filter for AI coding assistant tool calls",
	Version: version,
	Long: `guardrails reads a single tool call (a shell command or a file path)
as JSON on standard input, evaluates it against a static rule corpus and
user-defined allowlist, and writes an allow/deny/warn decision as JSON
on standard output. Exit code is non-zero for deny.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to config.toml (default: ~/.claude/guardrails/config.toml)")
	rootCmd.Flags().StringVar(&safetyLevel, "safety-level", "", "critical|high|strict (overrides config file)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "downgrade denies to warns without blocking")
}

// Execute runs the root command and returns the process exit code: 1
// for a command error, malformed input or a deny decision, 0 otherwise.
// cmd/guardrails/main.go passes it straight to os.Exit.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

// exitCode is set by run() since cobra's RunE signature has no room to
// report "succeeded, but the decision was deny" separately from a
// genuine command error.
var exitCode int

// requestEnvelope mirrors spec.md §6's standard-input shape.
type requestEnvelope struct {
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

type shellPayload struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd"`
}

type filePayload struct {
	Path string `json:"path"`
}

// responseEnvelope mirrors spec.md §6's standard-output shape.
type responseEnvelope struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	RuleID   string `json:"rule_id,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return writeMalformedInput(fmt.Sprintf("reading stdin: %v", err))
	}

	var req requestEnvelope
	if err := json.Unmarshal(data, &req); err != nil {
		return writeMalformedInput(fmt.Sprintf("invalid JSON: %v", err))
	}
	if req.ToolName == "" {
		return writeMalformedInput("missing tool_name")
	}

	cfg := config.Load(config.Overrides{ConfigPath: cfgPath, SafetyLevel: safetyLevel, DryRun: dryRun})

	al := allowlist.Load(config.AllowlistPath())

	logger, logErr := audit.Open(cfg.AuditPath)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "guardrails: could not open audit log: %v\n", logErr)
	} else {
		defer logger.Close()
	}

	e := engine.New(cfg, al, logger)

	call, ok := toToolCall(req)
	if !ok {
		decision := engine.Decision{Verdict: engine.Allow, Reason: "tool not checked"}
		return writeDecision(decision)
	}

	decision := e.Decide(call)
	return writeDecision(decision)
}

func toToolCall(req requestEnvelope) (engine.ToolCall, bool) {
	switch req.ToolName {
	case "Bash":
		var p shellPayload
		json.Unmarshal(req.ToolInput, &p)
		return engine.ToolCall{Kind: engine.KindBash, Command: p.Command, Cwd: p.Cwd}, true
	case "Read":
		var p filePayload
		json.Unmarshal(req.ToolInput, &p)
		return engine.ToolCall{Kind: engine.KindRead, Path: p.Path}, true
	case "Edit":
		var p filePayload
		json.Unmarshal(req.ToolInput, &p)
		return engine.ToolCall{Kind: engine.KindEdit, Path: p.Path}, true
	case "Write":
		var p filePayload
		json.Unmarshal(req.ToolInput, &p)
		return engine.ToolCall{Kind: engine.KindWrite, Path: p.Path}, true
	default:
		return engine.ToolCall{}, false
	}
}

func writeDecision(d engine.Decision) error {
	resp := responseEnvelope{Decision: string(d.Verdict), Reason: d.Reason, RuleID: d.RuleID}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if d.Verdict == engine.Deny {
		exitCode = 1
	}
	return nil
}

func writeMalformedInput(reason string) error {
	resp := responseEnvelope{Decision: string(engine.Deny), Reason: reason, RuleID: "malformed-input"}
	data, _ := json.Marshal(resp)
	fmt.Println(string(data))
	exitCode = 1
	return nil
}
