// Package path implements the protected-path analyzer from spec.md §4.4:
// it normalizes a file-tool path argument and matches it against the
// secret-path rule table.
package path

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gzhole/guardrails/internal/rules"
)

// Hit mirrors shell.Hit; the two analyzers share a match shape but not a
// package, since a path has no pipeline or wrapper structure to walk.
type Hit struct {
	RuleID   string
	Category rules.Category
	Severity rules.SafetyLevel
	Message  string
}

// Normalize expands a leading ~, resolves the path relative to cwd if
// relative, and collapses "." and ".." segments without touching the
// filesystem or following symlinks.
func Normalize(rawPath, cwd string) string {
	p := rawPath
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	if !filepath.IsAbs(p) && cwd != "" {
		p = filepath.Join(cwd, p)
	}
	return filepath.Clean(p)
}

// Analyze normalizes path and returns every secret-path rule hit at the
// given safety level, tested against both the full normalized path and
// its basename.
func Analyze(rawPath, cwd string, level rules.SafetyLevel) []Hit {
	normalized := Normalize(rawPath, cwd)
	base := filepath.Base(normalized)

	var hits []Hit
	for _, rule := range rules.ForLevel(rules.SecretRules, level) {
		if rule.Pattern.MatchString(normalized) || rule.Pattern.MatchString(base) {
			hits = append(hits, Hit{RuleID: rule.ID, Category: rule.Category, Severity: rule.Severity, Message: rule.Message})
		}
	}
	return hits
}
