package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// MessagePlaceholder is replaced with the user's text in generic templates.
const MessagePlaceholder = "{message}"

type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Plural   bool     `yaml:"plural"` // also match keyword+"s"
	Reply    string   `yaml:"reply"`
}

// Rules is the keyword table of the local responder. Order matters: the
// first rule with a matching keyword wins.
type Rules struct {
	Rules     []Rule   `yaml:"rules"`
	Templates []string `yaml:"templates"`
}

// LoadRules reads the rule table from path, or the embedded default table
// when path is empty.
func LoadRules(path string) (*Rules, error) {
	data := defaultRules
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rules file: %w", err)
		}
		data = b
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	for i := range r.Rules {
		for j, kw := range r.Rules[i].Keywords {
			r.Rules[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	return &r, nil
}

func (r *Rules) validate() error {
	if len(r.Templates) == 0 {
		return errors.New("rules: at least one generic template is required")
	}
	for i, rule := range r.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rules: rule #%d has no name", i)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("rules: rule %q has no keywords", rule.Name)
		}
		if strings.TrimSpace(rule.Reply) == "" {
			return fmt.Errorf("rules: rule %q has an empty reply", rule.Name)
		}
	}
	for i, t := range r.Templates {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("rules: template #%d is empty", i)
		}
	}
	return nil
}
