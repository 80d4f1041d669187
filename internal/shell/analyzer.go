// Package shell implements the four-phase shell command analyzer from
// the security decision engine: AST parsing, structural checks, head
// normalization plus wrapper peeling, and pattern matching. It is the
// hardest component in the system — correctly normalizing adversarial
// shell input so pattern rules are not trivially bypassed.
package shell

import (
	"path"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/gzhole/guardrails/internal/rules"
)

// Hit is a single rule match produced by the analyzer.
type Hit struct {
	RuleID   string
	Category rules.Category
	Severity rules.SafetyLevel
	Message  string
}

// Options controls analyzer behavior, sourced from configuration.
type Options struct {
	ExtraWrappers         []string
	BlockVariableCommands bool
	BlockPipeToShell      bool
	SafetyLevel           rules.SafetyLevel
	MaxCommandBytes       int
	MaxPipelineDepth      int
}

// DefaultOptions returns the spec's documented defaults.
func DefaultOptions() Options {
	return Options{
		BlockVariableCommands: true,
		BlockPipeToShell:      true,
		SafetyLevel:           rules.High,
		MaxCommandBytes:       100 * 1024,
		MaxPipelineDepth:      32,
	}
}

var shellInterpreters = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "ksh": true,
	"dash": true, "csh": true, "tcsh": true, "fish": true,
}

var scriptInterpreters = map[string]bool{
	"python": true, "python2": true, "python3": true,
	"perl": true, "node": true, "ruby": true,
}

func isInterpreter(name string) bool {
	return shellInterpreters[name] || scriptInterpreters[name]
}

// Analyze runs the full analyzer pipeline against a raw shell command
// string and returns every rule hit, deduplicated by rule id. Hits from
// the rule tables are limited to the configured safety level; the
// structural checks (resource limits, dynamic head, eval, pipe-to-shell,
// env-hijack, interpreter-inline) and parse-failed are reported at
// every level.
func Analyze(command string, opts Options) []Hit {
	if opts.MaxCommandBytes > 0 && len(command) > opts.MaxCommandBytes {
		return []Hit{{
			RuleID: "resource-limit", Category: rules.CategoryDangerous,
			Severity: rules.Critical, Message: "command exceeds maximum size",
		}}
	}

	wrappers := newWrapperSet(opts.ExtraWrappers)
	file, parsed := parseCommand(command)

	var hits []Hit

	if parsed {
		maxDepth := opts.MaxPipelineDepth
		if maxDepth <= 0 {
			maxDepth = 32
		}
		var segs []*syntax.CallExpr
		var ops []string
		limitHit := false
		for _, stmt := range file.Stmts {
			walkStmt(stmt, 0, maxDepth, &segs, &ops, &limitHit)
		}
		if limitHit {
			hits = append(hits, Hit{
				RuleID: "resource-limit", Category: rules.CategoryDangerous,
				Severity: rules.Critical, Message: "pipeline nesting exceeds maximum depth",
			})
		}

		if opts.BlockVariableCommands {
			hits = append(hits, dynamicHeadHits(segs)...)
			hits = append(hits, evalDynamicHits(segs)...)
		}
		if opts.BlockPipeToShell {
			hits = append(hits, pipeToShellHits(segs, ops, wrappers)...)
		}
		hits = append(hits, envHijackASTHits(segs)...)

		for _, call := range segs {
			words := wordsOf(call)
			residual, envAssigns := peelWrappers(words, wrappers)
			for _, assign := range envAssigns {
				hits = append(hits, envHijackTextChecks(assign)...)
			}
			hits = append(hits, interpreterInlineHits(residual, opts)...)

			normalized := normalizeHead(residual)
			hits = append(hits, matchText(normalized, opts.SafetyLevel)...)
		}
	}

	// Belt-and-suspenders: also run phase 4 against the raw text split
	// on compound-command separators (never on bare pipe), catching
	// constructs the structural walk did not reach.
	for _, part := range splitCompound(command) {
		hits = append(hits, matchText(part, opts.SafetyLevel)...)
	}

	// Always-on env-hijack text check, independent of parse success.
	hits = append(hits, envHijackTextChecks(command)...)

	if !parsed {
		hits = append(hits, matchText(command, opts.SafetyLevel)...)
		if opts.BlockVariableCommands && hasVariableHead(command) {
			hits = append(hits, Hit{
				RuleID: "dynamic-command", Category: rules.CategoryDangerous,
				Severity: rules.Critical, Message: "dynamic command head cannot be statically verified",
			})
		}
		if len(hits) == 0 {
			hits = append(hits, Hit{
				RuleID: "parse-failed", Category: rules.CategoryDangerous,
				Severity: rules.Critical, Message: "command could not be parsed and matched no known-safe pattern",
			})
		}
	}

	return dedupeHits(hits)
}

// parseCommand attempts to parse command with a Bash grammar. A partial
// parse (some statements recovered before a syntax error) is treated as
// success for whatever prefix did parse, per this implementation's
// resolution of the spec's open question on partial parses.
func parseCommand(command string) (*syntax.File, bool) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash), syntax.RecoverErrors(1))
	file, err := parser.Parse(strings.NewReader(command), "")
	if file == nil {
		return nil, false
	}
	if err != nil && len(file.Stmts) == 0 {
		return nil, false
	}
	return file, true
}

func walkStmt(stmt *syntax.Stmt, depth, maxDepth int, segs *[]*syntax.CallExpr, ops *[]string, limitHit *bool) {
	if stmt == nil || stmt.Cmd == nil {
		return
	}
	if depth > maxDepth {
		*limitHit = true
		return
	}
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		if len(cmd.Args) > 0 || len(cmd.Assigns) > 0 {
			*segs = append(*segs, cmd)
		}
	case *syntax.BinaryCmd:
		walkStmt(cmd.X, depth+1, maxDepth, segs, ops, limitHit)
		*ops = append(*ops, binOpString(cmd.Op))
		walkStmt(cmd.Y, depth+1, maxDepth, segs, ops, limitHit)
	case *syntax.Subshell:
		for _, s := range cmd.Stmts {
			walkStmt(s, depth+1, maxDepth, segs, ops, limitHit)
		}
	case *syntax.Block:
		for _, s := range cmd.Stmts {
			walkStmt(s, depth+1, maxDepth, segs, ops, limitHit)
		}
	}
}

func binOpString(op syntax.BinCmdOperator) string {
	switch op {
	case syntax.Pipe, syntax.PipeAll:
		return "|"
	case syntax.AndStmt:
		return "&&"
	case syntax.OrStmt:
		return "||"
	default:
		return ""
	}
}

// wordToString flattens a Word AST node to its resolved string form,
// concatenating adjacent quoted fragments (ba'sh' -> bash) rather than
// reproducing the original quoting the way a formatter would.
func wordToString(word *syntax.Word) string {
	var sb strings.Builder
	for _, part := range word.Parts {
		writeWordPart(&sb, part)
	}
	return sb.String()
}

func writeWordPart(sb *strings.Builder, part syntax.WordPart) {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(p.Value)
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, sub := range p.Parts {
			writeWordPart(sb, sub)
		}
	case *syntax.ParamExp:
		sb.WriteString("$")
		if p.Param != nil {
			sb.WriteString(p.Param.Value)
		}
	case *syntax.CmdSubst:
		sb.WriteString("$(...)")
	default:
		// Anything else (extended globs, process substitution) is rare
		// in the commands this analyzer cares about; fall back to the
		// formatter's rendering rather than dropping it silently.
		printer := syntax.NewPrinter()
		printer.Print(sb, part)
	}
}

func wordsOf(call *syntax.CallExpr) []string {
	words := make([]string, 0, len(call.Args))
	for _, w := range call.Args {
		words = append(words, wordToString(w))
	}
	return words
}

// wordIsDynamic reports whether word contains a parameter expansion or
// command substitution (including backticks) anywhere in it.
func wordIsDynamic(word *syntax.Word) bool {
	if word == nil {
		return false
	}
	for _, part := range word.Parts {
		switch part.(type) {
		case *syntax.ParamExp, *syntax.CmdSubst:
			return true
		}
	}
	return false
}

// dynamicHeadHits implements spec.md §4.3 phase 2 check 1.
func dynamicHeadHits(segs []*syntax.CallExpr) []Hit {
	var hits []Hit
	for _, call := range segs {
		if len(call.Args) == 0 {
			continue
		}
		if wordIsDynamic(call.Args[0]) {
			hits = append(hits, Hit{
				RuleID: "dynamic-command", Category: rules.CategoryDangerous,
				Severity: rules.Critical,
				Message:  "command head is a variable expansion or substitution, which cannot be statically verified",
			})
		}
	}
	return hits
}

// evalDynamicHits catches `eval` invoked with a variable or substitution
// argument.
func evalDynamicHits(segs []*syntax.CallExpr) []Hit {
	var hits []Hit
	for _, call := range segs {
		if len(call.Args) == 0 || wordToString(call.Args[0]) != "eval" {
			continue
		}
		for _, arg := range call.Args[1:] {
			if wordIsDynamic(arg) {
				hits = append(hits, Hit{
					RuleID: "eval-dynamic", Category: rules.CategoryDangerous,
					Severity: rules.High, Message: "eval invoked with a dynamic argument",
				})
				break
			}
		}
	}
	return hits
}

// pipeToShellHits implements spec.md §4.3 phase 2 check 2: for every
// pipeline, any stage after the first whose (wrapper-peeled) head
// normalizes to a shell or scripting interpreter is a hit.
func pipeToShellHits(segs []*syntax.CallExpr, ops []string, wrappers wrapperSet) []Hit {
	var hits []Hit
	for i := 0; i < len(ops) && i+1 < len(segs); i++ {
		if ops[i] != "|" {
			continue
		}
		residual, _ := peelWrappers(wordsOf(segs[i+1]), wrappers)
		if len(residual) == 0 {
			continue
		}
		head := path.Base(residual[0])
		if isInterpreter(head) {
			hits = append(hits, Hit{
				RuleID: "pipe-to-shell", Category: rules.CategoryDangerous,
				Severity: rules.High,
				Message:  "pipeline stage " + head + " is a shell or scripting interpreter",
			})
		}
	}
	return hits
}

var hijackAssignNames = []string{"LD_PRELOAD", "LD_LIBRARY_PATH"}

func isHijackAssignName(name string) bool {
	for _, n := range hijackAssignNames {
		if name == n {
			return true
		}
	}
	if strings.HasPrefix(name, "DYLD_") {
		return true
	}
	if strings.HasPrefix(name, "GUARDRAILS_") {
		return true
	}
	return false
}

// envHijackASTHits implements spec.md §4.3 phase 2 check 3, reading
// environment-assignment prefixes directly off the AST.
func envHijackASTHits(segs []*syntax.CallExpr) []Hit {
	var hits []Hit
	for _, call := range segs {
		for _, assign := range call.Assigns {
			if assign.Name == nil {
				continue
			}
			if isHijackAssignName(assign.Name.Value) {
				hits = append(hits, Hit{
					RuleID: "env-hijack", Category: rules.CategoryDangerous,
					Severity: rules.High,
					Message:  "environment assignment " + assign.Name.Value + " may alter runtime linking or bypass this filter",
				})
			}
		}
	}
	return hits
}

var envHijackTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bLD_PRELOAD\s*=`),
	regexp.MustCompile(`\bLD_LIBRARY_PATH\s*=`),
	regexp.MustCompile(`\bDYLD_\w*\s*=`),
	regexp.MustCompile(`\bGUARDRAILS_\w*\s*=`),
}

// envHijackTextChecks is the always-on, AST-independent env-hijack
// check: it inspects the literal command text for assignment-prefix
// hijack attempts, including ones aimed at this very tool.
func envHijackTextChecks(text string) []Hit {
	for _, pat := range envHijackTextPatterns {
		if pat.MatchString(text) {
			return []Hit{{
				RuleID: "env-hijack", Category: rules.CategoryDangerous,
				Severity: rules.High,
				Message:  "environment assignment may alter runtime linking or bypass this filter",
			}}
		}
	}
	return nil
}

// interpreterInlineHits recursively analyzes the inline code argument to
// `bash -c`, `sh -c`, `python -c`, `node -e`, `perl -e`, and similar. A
// bare interpreter invocation with benign inline code is not flagged; a
// dangerous inline body is reported as interpreter-inline rather than
// under its own rule id, since the outer interpreter call is what the
// engine actually executes.
func interpreterInlineHits(words []string, opts Options) []Hit {
	if len(words) == 0 {
		return nil
	}
	head := path.Base(words[0])
	if !isInterpreter(head) {
		return nil
	}
	for i := 1; i < len(words)-1; i++ {
		if words[i] == "-c" || words[i] == "-e" {
			inner := words[i+1]
			if len(Analyze(inner, opts)) > 0 {
				return []Hit{{
					RuleID: "interpreter-inline", Category: rules.CategoryDangerous,
					Severity: rules.High,
					Message:  head + " invoked with inline code that itself triggers a rule",
				}}
			}
		}
	}
	return nil
}

// normalizeHead strips a directory prefix from the head token and
// rejoins the residual command tokens into canonical text, per spec.md
// §4.3 phase 3 step 3.
func normalizeHead(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	out := make([]string, len(tokens))
	out[0] = path.Base(tokens[0])
	copy(out[1:], tokens[1:])
	return strings.Join(out, " ")
}

func matchText(text string, level rules.SafetyLevel) []Hit {
	if text == "" {
		return nil
	}
	var hits []Hit
	for _, rule := range rules.ForLevel(rules.DangerousRules, level) {
		if rule.Pattern.MatchString(text) {
			hits = append(hits, Hit{RuleID: rule.ID, Category: rule.Category, Severity: rule.Severity, Message: rule.Message})
		}
	}
	for _, rule := range rules.ForLevel(rules.ExfiltrationRules, level) {
		if rule.Pattern.MatchString(text) {
			hits = append(hits, Hit{RuleID: rule.ID, Category: rule.Category, Severity: rule.Severity, Message: rule.Message})
		}
	}
	for _, rule := range rules.ForLevel(rules.SecretRules, level) {
		if rule.Pattern.MatchString(text) {
			hits = append(hits, Hit{RuleID: rule.ID, Category: rule.Category, Severity: rule.Severity, Message: rule.Message})
		}
	}
	return hits
}

var compoundSplit = regexp.MustCompile(`\s*(?:;|&&|\|\|)\s*`)

// splitCompound splits on ;, &&, || but never on a bare pipe, mirroring
// original_source's split_compound_command.
func splitCompound(command string) []string {
	return compoundSplit.Split(command, -1)
}

var variableHeadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\$\w+\s`),
	regexp.MustCompile(`^\s*\$\{\w+\}`),
	regexp.MustCompile(`\beval\s+.*\$`),
	regexp.MustCompile(`^\s*\$\(`),
	regexp.MustCompile("^\\s*`"),
}

func hasVariableHead(command string) bool {
	for _, pat := range variableHeadPatterns {
		if pat.MatchString(command) {
			return true
		}
	}
	return false
}

func dedupeHits(hits []Hit) []Hit {
	seen := make(map[string]bool, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if seen[h.RuleID] {
			continue
		}
		seen[h.RuleID] = true
		out = append(out, h)
	}
	return out
}
