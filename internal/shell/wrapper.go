package shell

// DefaultWrappers is the built-in wrapper set from spec.md §4.3,
// supplemented via config's [bash] wrappers list.
var DefaultWrappers = []string{
	"sudo", "timeout", "env", "xargs", "nohup", "nice", "ionice",
	"strace", "time", "setsid", "stdbuf", "chronic", "doas",
	"unbuffer", "watch", "caffeinate",
}

type wrapperSet map[string]bool

func newWrapperSet(extra []string) wrapperSet {
	ws := make(wrapperSet, len(DefaultWrappers)+len(extra))
	for _, w := range DefaultWrappers {
		ws[w] = true
	}
	for _, w := range extra {
		ws[w] = true
	}
	return ws
}

const maxPeelDepth = 8

// peelWrappers repeatedly strips known wrapper commands from the head of
// tokens, per spec.md §4.3 phase 3. It returns the residual "effective"
// command tokens and any environment assignments accumulated from `env
// NAME=VALUE ...` prefixes along the way, which phase 2's env-hijack
// check must also see.
//
// Tie-break rule (spec.md §4.3): if a wrapper's argument list is
// ambiguous, peeling halts and the original head stands rather than
// guessing. Peeling is capped at maxPeelDepth (8) to bound adversarial
// wrapper chains.
func peelWrappers(tokens []string, wrappers wrapperSet) ([]string, []string) {
	var envAssigns []string

	for depth := 0; depth < maxPeelDepth; depth++ {
		if len(tokens) == 0 {
			return tokens, envAssigns
		}
		head := tokens[0]
		if !wrappers[head] {
			return tokens, envAssigns
		}

		var rest []string
		var assigns []string
		switch head {
		case "sudo":
			rest = unwrapSudo(tokens)
		case "timeout":
			rest = unwrapTimeout(tokens)
		case "env":
			rest, assigns = unwrapEnv(tokens)
		case "xargs":
			rest = unwrapXargs(tokens)
		case "watch":
			rest = unwrapWatch(tokens)
		case "nice", "ionice", "nohup", "strace", "time", "unbuffer", "caffeinate", "doas":
			rest = unwrapSimplePrefix(tokens, simplePrefixArgFlags)
		case "setsid", "stdbuf", "chronic":
			// No documented flag-consumption table (spec.md §9 open
			// question); err on the conservative side and assume no
			// flag takes a separate argument.
			rest = unwrapSimplePrefix(tokens, nil)
		default:
			rest = tokens[1:]
		}

		if len(rest) == 0 {
			// Ambiguous or exhausted: halt, original head stands.
			return tokens, envAssigns
		}

		envAssigns = append(envAssigns, assigns...)
		tokens = rest
	}

	return tokens, envAssigns
}

// unwrapSudo peels: sudo [-u user] [-g group] [-E] [-H] [-P] [-S] cmd args...
func unwrapSudo(tokens []string) []string {
	argFlags := map[string]bool{
		"-u": true, "--user": true, "-g": true, "--group": true,
		"-C": true, "--close-from": true, "-h": true, "--host": true,
	}
	return skipFlags(tokens[1:], argFlags)
}

// unwrapTimeout peels: timeout [options] duration cmd args...
func unwrapTimeout(tokens []string) []string {
	argFlags := map[string]bool{"-s": true, "--signal": true, "-k": true, "--kill-after": true}
	idx := 1
	for idx < len(tokens) {
		tok := tokens[idx]
		if hasDashPrefix(tok) {
			if argFlags[tok] {
				idx += 2
			} else {
				idx++
			}
			continue
		}
		// tok is the duration; the command follows.
		idx++
		if idx < len(tokens) {
			return tokens[idx:]
		}
		return nil
	}
	return nil
}

// unwrapEnv peels: env [-i] [-u NAME] [NAME=VALUE ...] cmd args...
// re-contributing NAME=VALUE assignments to the caller for the env-hijack
// re-check.
func unwrapEnv(tokens []string) ([]string, []string) {
	var assigns []string
	idx := 1
	for idx < len(tokens) {
		tok := tokens[idx]
		if hasDashPrefix(tok) {
			if tok == "-u" || tok == "--unset" {
				idx += 2
			} else {
				idx++
			}
			continue
		}
		if containsEquals(tok) {
			assigns = append(assigns, tok)
			idx++
			continue
		}
		return tokens[idx:], assigns
	}
	return nil, assigns
}

// unwrapXargs peels: xargs [options] [cmd [initial-args]]
func unwrapXargs(tokens []string) []string {
	argFlags := map[string]bool{
		"-n": true, "-L": true, "-I": true, "-E": true,
		"-s": true, "-P": true, "-d": true, "-a": true,
	}
	return skipFlags(tokens[1:], argFlags)
}

// unwrapWatch peels: watch [options] cmd
func unwrapWatch(tokens []string) []string {
	argFlags := map[string]bool{"-n": true, "-d": true, "--interval": true, "--differences": true}
	return skipFlags(tokens[1:], argFlags)
}

// simplePrefixArgFlags covers nice -n N, ionice -c N/-p N, and similar
// single-letter-flag-plus-argument wrappers.
var simplePrefixArgFlags = map[string]bool{"-n": true, "-c": true, "-p": true}

// unwrapSimplePrefix peels a wrapper that takes only flags then the
// command: nice, nohup, strace, time, unbuffer, caffeinate, doas, and
// (conservatively, no arg-taking flags) setsid/stdbuf/chronic.
func unwrapSimplePrefix(tokens []string, argFlags map[string]bool) []string {
	return skipFlags(tokens[1:], argFlags)
}

func skipFlags(tokens []string, argFlags map[string]bool) []string {
	idx := 0
	for idx < len(tokens) {
		tok := tokens[idx]
		if hasDashPrefix(tok) {
			if argFlags[tok] {
				idx += 2
			} else {
				idx++
			}
			continue
		}
		return tokens[idx:]
	}
	return nil
}

func hasDashPrefix(s string) bool {
	return len(s) > 0 && s[0] == '-'
}

func containsEquals(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return true
		}
	}
	return false
}
