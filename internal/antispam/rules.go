package antispam

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules is the editable data behind the filter.
type Rules struct {
	DisposableDomains []string `yaml:"disposable_domains"`
	SpamKeywords      []string `yaml:"spam_keywords"`
	MaxRepeatedRun    int      `yaml:"max_repeated_run"`
	MaxLinks          int      `yaml:"max_links"`
	MaxCapsRatio      float64  `yaml:"max_caps_ratio"`
}

// DefaultRules returns the rules compiled into the binary.
func DefaultRules() Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("antispam: embedded rules: %v", err))
	}
	return r
}

// LoadRules reads rules from path, or the embedded defaults when path is empty.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("antispam: read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules and normalises list entries to lower case.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("antispam: parse rules: %w", err)
	}
	r.DisposableDomains = normalise(r.DisposableDomains)
	r.SpamKeywords = normalise(r.SpamKeywords)

	if r.MaxRepeatedRun < 2 {
		return Rules{}, fmt.Errorf("antispam: max_repeated_run must be at least 2, got %d", r.MaxRepeatedRun)
	}
	if r.MaxLinks < 0 {
		return Rules{}, fmt.Errorf("antispam: max_links must not be negative")
	}
	if r.MaxCapsRatio <= 0 || r.MaxCapsRatio > 1 {
		return Rules{}, fmt.Errorf("antispam: max_caps_ratio must be in (0, 1], got %v", r.MaxCapsRatio)
	}
	return r, nil
}

func normalise(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
