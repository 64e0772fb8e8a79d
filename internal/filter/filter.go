// Package filter decides which paths the walker skips.
package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern matches a full path string
type Pattern interface {
	Match(path string) bool
	String() string
}

type literalPattern string

func (p literalPattern) Match(path string) bool { return strings.Contains(path, string(p)) }
func (p literalPattern) String() string         { return "literal:" + string(p) }

type regexPattern struct {
	re *regexp.Regexp
}

func (p regexPattern) Match(path string) bool { return p.re.MatchString(path) }
func (p regexPattern) String() string         { return "regex:" + p.re.String() }

// globPattern matches with doublestar semantics against the slash form of the path
type globPattern string

func (p globPattern) Match(path string) bool {
	ok, _ := doublestar.Match(string(p), filepath.ToSlash(path))
	return ok
}
func (p globPattern) String() string { return "glob:" + string(p) }

// Literal returns a pattern that matches any path containing s
func Literal(s string) Pattern {
	return literalPattern(s)
}

// Regex compiles a regular expression pattern
func Regex(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude regex %q: %w", expr, err)
	}
	return regexPattern{re: re}, nil
}

// Glob validates and returns a doublestar glob pattern
func Glob(expr string) (Pattern, error) {
	if !doublestar.ValidatePattern(expr) {
		return nil, fmt.Errorf("invalid exclude glob %q: %w", expr, doublestar.ErrBadPattern)
	}
	return globPattern(expr), nil
}

// Config is the uncompiled filter configuration
type Config struct {
	Literals      []string
	Regexes       []string
	Globs         []string
	HiddenFolders []string
}

// Filter is an immutable, compiled exclusion policy. It is safe for
// concurrent use.
type Filter struct {
	patterns []Pattern
	hidden   map[string]struct{}
}

// New compiles cfg. Patterns are evaluated in the order literals, regexes, globs.
func New(cfg Config) (*Filter, error) {
	f := &Filter{hidden: make(map[string]struct{}, len(cfg.HiddenFolders))}

	for _, s := range cfg.Literals {
		if s == "" {
			continue
		}
		f.patterns = append(f.patterns, Literal(s))
	}
	for _, expr := range cfg.Regexes {
		p, err := Regex(expr)
		if err != nil {
			return nil, err
		}
		f.patterns = append(f.patterns, p)
	}
	for _, expr := range cfg.Globs {
		p, err := Glob(expr)
		if err != nil {
			return nil, err
		}
		f.patterns = append(f.patterns, p)
	}
	for _, name := range cfg.HiddenFolders {
		if name != "" {
			f.hidden[name] = struct{}{}
		}
	}

	return f, nil
}

// NewWithPatterns builds a filter from already compiled patterns
func NewWithPatterns(patterns []Pattern, hiddenFolders []string) *Filter {
	f := &Filter{
		patterns: append([]Pattern(nil), patterns...),
		hidden:   make(map[string]struct{}, len(hiddenFolders)),
	}
	for _, name := range hiddenFolders {
		f.hidden[name] = struct{}{}
	}
	return f
}

// ShouldExclude reports whether path matches any pattern or has any
// segment equal to a hidden folder name. A nil filter excludes nothing.
func (f *Filter) ShouldExclude(path string) bool {
	return f.ShouldExcludeBelow("", path)
}

// ShouldExcludeBelow is ShouldExclude for a path found under root.
// Patterns see the full path; hidden folder names are only looked up in
// the segments below root, so a root inside a hidden folder is still scanned.
func (f *Filter) ShouldExcludeBelow(root, path string) bool {
	if f == nil {
		return false
	}

	for _, p := range f.patterns {
		if p.Match(path) {
			return true
		}
	}

	if len(f.hidden) == 0 {
		return false
	}

	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			rel = r
		}
	}

	// Check every segment, so descendants of a hidden folder are rejected too
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if _, ok := f.hidden[part]; ok {
			return true
		}
	}

	return false
}

// Patterns returns the compiled patterns in evaluation order
func (f *Filter) Patterns() []Pattern {
	if f == nil {
		return nil
	}
	return append([]Pattern(nil), f.patterns...)
}
