// Package allowlist implements the user-defined exception list from
// spec.md §4.2: tool-scoped regex entries consulted before any rule
// check. The allowlist can only grant allow, never deny.
package allowlist

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Tool identifies which tool kind an entry applies to.
type Tool string

const (
	ToolBash Tool = "Bash"
	ToolRead Tool = "Read"
	ToolEdit Tool = "Edit"
	ToolWrite Tool = "Write"
)

type rawEntry struct {
	Pattern string `toml:"pattern"`
	Reason  string `toml:"reason"`
	Tool    string `toml:"tool"`
}

type rawFile struct {
	Entries []rawEntry `toml:"entries"`
}

// Entry is one compiled allowlist exception.
type Entry struct {
	Pattern *regexp.Regexp
	Reason  string
	Tool    Tool
}

// Allowlist is the compiled, immutable set of user exceptions.
type Allowlist struct {
	entries []Entry
	errors  []string
}

// Load reads and compiles the allowlist TOML file at path. A missing
// file is not an error: it yields an empty allowlist. A malformed file
// or an uncompilable regex is recorded in Errors() and skipped, rather
// than aborting the process, per the configuration-error policy.
func Load(path string) *Allowlist {
	al := &Allowlist{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return al
	}

	var rf rawFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		al.errors = append(al.errors, fmt.Sprintf("malformed allowlist at %s: %v", path, err))
		return al
	}

	for _, re := range rf.Entries {
		pattern, err := regexp.Compile(re.Pattern)
		if err != nil {
			al.errors = append(al.errors, fmt.Sprintf("invalid allowlist pattern %q: %v", re.Pattern, err))
			continue
		}
		al.entries = append(al.entries, Entry{Pattern: pattern, Reason: re.Reason, Tool: Tool(re.Tool)})
	}

	return al
}

// Errors reports configuration problems encountered while loading.
func (al *Allowlist) Errors() []string {
	return al.errors
}

// Match reports whether any entry scoped to tool matches text (regex
// find, not full-match). Returns the matching entry's reason and true
// on the first hit, in file order.
func (al *Allowlist) Match(tool Tool, text string) (reason string, ok bool) {
	for _, e := range al.entries {
		if e.Tool != tool {
			continue
		}
		if e.Pattern.MatchString(text) {
			return e.Reason, true
		}
	}
	return "", false
}
