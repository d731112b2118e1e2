// Package functions describes the callable Molang functions a program may use.
//
// A [Table] maps fully qualified names such as "math.cos" or
// "query.is_sneaking" to a [Signature] giving the accepted argument count and
// the engine version that introduced the function. The semantic checker uses
// a Table to validate calls.
//
// Tables are plain maps. [Builtins] returns the Bedrock math library; custom
// tables load from YAML or TOML files:
//
//	functions:
//	  - name: query.is_item_name_any
//	    min_args: 2
//	    max_args: -1
//	    since: 1.16.0
//
// # Example
//
//	table := functions.Builtins()
//	custom, err := functions.LoadFile("queries.yaml")
//	if err != nil {
//	    return err
//	}
//	table = table.Merge(custom)
package functions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Variadic is the MaxArgs value of a function accepting any number of
// arguments from MinArgs up.
const Variadic = -1

// Signature describes one callable function.
type Signature struct {
	// Name is the fully qualified name, e.g. "math.clamp".
	Name string `yaml:"name" toml:"name"`
	// MinArgs is the minimum number of arguments.
	MinArgs int `yaml:"min_args" toml:"min_args"`
	// MaxArgs is the maximum number of arguments, or Variadic.
	MaxArgs int `yaml:"max_args" toml:"max_args"`
	// Since is the semantic version that introduced the function.
	// Empty means always available.
	Since string `yaml:"since,omitempty" toml:"since,omitempty"`
	// Doc is a one-line description.
	Doc string `yaml:"doc,omitempty" toml:"doc,omitempty"`
}

// Accepts reports whether n arguments are valid for the function.
func (s Signature) Accepts(n int) bool {
	if n < s.MinArgs {
		return false
	}
	return s.MaxArgs == Variadic || n <= s.MaxArgs
}

// Arity returns a human readable argument count: "2", "1 to 3" or "at least 1".
func (s Signature) Arity() string {
	switch {
	case s.MaxArgs == Variadic:
		return fmt.Sprintf("at least %d", s.MinArgs)
	case s.MinArgs == s.MaxArgs:
		return fmt.Sprintf("%d", s.MinArgs)
	default:
		return fmt.Sprintf("%d to %d", s.MinArgs, s.MaxArgs)
	}
}

// Version parses Since. It returns nil for functions without a version.
func (s Signature) Version() (*semver.Version, error) {
	if s.Since == "" {
		return nil, nil
	}
	v, err := semver.NewVersion(s.Since)
	if err != nil {
		return nil, fmt.Errorf("function %s: invalid version %q: %w", s.Name, s.Since, err)
	}
	return v, nil
}

// AvailableIn reports whether the function exists in the target version.
// A nil target accepts every function, and so does an unparsable Since.
func (s Signature) AvailableIn(target *semver.Version) bool {
	if target == nil {
		return true
	}
	v, err := s.Version()
	if err != nil || v == nil {
		return true
	}
	return !v.GreaterThan(target)
}

// Validate checks the signature for consistency.
func (s Signature) Validate() error {
	if s.Name == "" {
		return errors.New("function without a name")
	}
	if !strings.Contains(s.Name, ".") {
		return fmt.Errorf("function %s: name must be qualified, e.g. math.%s", s.Name, s.Name)
	}
	if s.MinArgs < 0 {
		return fmt.Errorf("function %s: min_args must not be negative", s.Name)
	}
	if s.MaxArgs != Variadic && s.MaxArgs < s.MinArgs {
		return fmt.Errorf("function %s: max_args %d is below min_args %d", s.Name, s.MaxArgs, s.MinArgs)
	}
	if _, err := s.Version(); err != nil {
		return err
	}
	return nil
}

// Table maps normalized function names to signatures.
type Table map[string]Signature

// NewTable builds a table from signatures, validating each one.
func NewTable(sigs ...Signature) (Table, error) {
	t := make(Table, len(sigs))
	for _, sig := range sigs {
		if err := t.Add(sig); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Normalize returns the table key for a function name. Names are case
// insensitive and the short "q." prefix stands for "query.".
func Normalize(name string) string {
	name = strings.ToLower(name)
	if rest, ok := strings.CutPrefix(name, "q."); ok {
		return "query." + rest
	}
	return name
}

// Add validates sig and stores it, replacing any previous entry.
func (t Table) Add(sig Signature) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	t[Normalize(sig.Name)] = sig
	return nil
}

// Lookup finds a function by name.
func (t Table) Lookup(name string) (Signature, bool) {
	sig, ok := t[Normalize(name)]
	return sig, ok
}

// HasNamespace reports whether any function lives in namespace, e.g. "query".
func (t Table) HasNamespace(namespace string) bool {
	prefix := Normalize(namespace + ".")
	for name := range t {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Merge returns a new table holding the entries of t overridden by other.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Names returns the sorted table keys.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
