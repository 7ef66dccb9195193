package sudo

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/loicsikidi/sudo/internal/sliceutil"
)

// BacktraceVariable controls the Go runtime traceback level. It is forwarded
// to the escalated process whatever the rules, matching its name without
// regard to case.
const BacktraceVariable = "GOTRACEBACK"

// RuleKind tells how a Rule matches variable names.
type RuleKind int

const (
	// RuleExact matches a single name.
	RuleExact RuleKind = iota
	// RulePrefix matches every name starting with the pattern.
	RulePrefix
	// RuleWildcard matches names against a glob pattern; "*" matches all.
	RuleWildcard
	// RuleFold matches a single name, ignoring case.
	RuleFold
)

func (k RuleKind) String() string {
	switch k {
	case RuleExact:
		return "exact"
	case RulePrefix:
		return "prefix"
	case RuleWildcard:
		return "wildcard"
	case RuleFold:
		return "fold"
	default:
		return fmt.Sprintf("rule(%d)", int(k))
	}
}

// Rule selects environment variables to forward. Rules are additive: a
// variable is forwarded when any rule matches it.
type Rule struct {
	Kind    RuleKind
	Pattern string

	glob glob.Glob
}

func Exact(name string) Rule {
	return Rule{Kind: RuleExact, Pattern: name}
}

func Prefix(prefix string) Rule {
	return Rule{Kind: RulePrefix, Pattern: prefix}
}

// Wildcard returns a glob rule. An invalid pattern is reported by
// Config.CheckAndSetDefaults and never matches.
func Wildcard(pattern string) Rule {
	r := Rule{Kind: RuleWildcard, Pattern: pattern}
	r.glob, _ = glob.Compile(pattern)
	return r
}

func Fold(name string) Rule {
	return Rule{Kind: RuleFold, Pattern: name}
}

func Names(names ...string) []Rule {
	return sliceutil.Map(names, Exact)
}

func Prefixes(prefixes ...string) []Rule {
	return sliceutil.Map(prefixes, Prefix)
}

func Wildcards(patterns ...string) []Rule {
	return sliceutil.Map(patterns, Wildcard)
}

func (r Rule) String() string {
	return r.Kind.String() + ":" + r.Pattern
}

func (r Rule) isAll() bool {
	return r.Kind == RuleWildcard && r.Pattern == "*"
}

// Matches reports whether the variable name is selected by r.
func (r Rule) Matches(name string) bool {
	switch r.Kind {
	case RuleExact:
		return name == r.Pattern
	case RulePrefix:
		return strings.HasPrefix(name, r.Pattern)
	case RuleWildcard:
		if r.isAll() {
			return true
		}
		return r.glob != nil && r.glob.Match(name)
	case RuleFold:
		return strings.EqualFold(name, r.Pattern)
	default:
		return false
	}
}

func (r *Rule) compile() error {
	switch r.Kind {
	case RuleExact, RulePrefix, RuleFold:
		return nil
	case RuleWildcard:
		g, err := glob.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, r.Pattern, err)
		}
		r.glob = g
		return nil
	default:
		return fmt.Errorf("%w: unknown rule kind %s", ErrInvalidPattern, r.Kind)
	}
}

type ruleKey struct {
	kind    RuleKind
	pattern string
}

// compileRules validates rules and drops duplicates, keeping their order.
func compileRules(rules []Rule) ([]Rule, error) {
	out := make([]Rule, len(rules))
	copy(out, rules)
	for i := range out {
		if err := out[i].compile(); err != nil {
			return nil, err
		}
	}
	return sliceutil.Dedupe(out, func(r Rule) ruleKey {
		return ruleKey{kind: r.Kind, pattern: r.Pattern}
	}), nil
}

// SelectEnvironment returns the variables of env that are forwarded under
// rules. BacktraceVariable is always included, whatever its case. The input
// is not modified.
func SelectEnvironment(env map[string]string, rules []Rule) map[string]string {
	all := false
	for _, r := range rules {
		if r.isAll() {
			all = true
			break
		}
	}

	out := make(map[string]string)
	for name, value := range env {
		if all || strings.EqualFold(name, BacktraceVariable) || matchesAny(rules, name) {
			out[name] = value
		}
	}
	return out
}

func matchesAny(rules []Rule, name string) bool {
	for _, r := range rules {
		if r.Matches(name) {
			return true
		}
	}
	return false
}

// EnvironMap turns KEY=VALUE entries, as returned by os.Environ, into a map.
// Entries without a name are skipped and later duplicates win.
func EnvironMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		out[name] = value
	}
	return out
}

// Environ renders env as sorted KEY=VALUE entries.
func Environ(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for name, value := range env {
		out = append(out, name+"="+value)
	}
	sort.Strings(out)
	return out
}

var tracebackLevels = []string{"none", "single", "all", "system", "crash", "wer", "0", "1", "2"}

// ValidTraceback reports whether value is a GOTRACEBACK setting understood by
// the Go runtime.
func ValidTraceback(value string) bool {
	return slices.Contains(tracebackLevels, value)
}
