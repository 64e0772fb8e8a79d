package filter

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRule is returned for a rule that does not set exactly one matcher
var ErrInvalidRule = errors.New("exclude rule must set exactly one of literal, regex or glob")

// Rule is one exclude entry of a rules file
type Rule struct {
	Literal string `yaml:"literal"`
	Regex   string `yaml:"regex"`
	Glob    string `yaml:"glob"`
}

// Rules represents a YAML rules file
type Rules struct {
	Exclude       []Rule   `yaml:"exclude"`
	HiddenFolders []string `yaml:"hidden_folders"`
}

// LoadRules reads and validates a rules file
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates rules from YAML
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	for i, r := range rules.Exclude {
		set := 0
		for _, v := range []string{r.Literal, r.Regex, r.Glob} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return nil, fmt.Errorf("rule %d: %w", i+1, ErrInvalidRule)
		}
	}

	return &rules, nil
}

// Apply appends the rules to cfg and returns the merged config
func (r *Rules) Apply(cfg Config) Config {
	out := Config{
		Literals:      append([]string(nil), cfg.Literals...),
		Regexes:       append([]string(nil), cfg.Regexes...),
		Globs:         append([]string(nil), cfg.Globs...),
		HiddenFolders: append([]string(nil), cfg.HiddenFolders...),
	}

	for _, rule := range r.Exclude {
		switch {
		case rule.Literal != "":
			out.Literals = append(out.Literals, rule.Literal)
		case rule.Regex != "":
			out.Regexes = append(out.Regexes, rule.Regex)
		case rule.Glob != "":
			out.Globs = append(out.Globs, rule.Glob)
		}
	}
	out.HiddenFolders = append(out.HiddenFolders, r.HiddenFolders...)

	return out
}
