// =============================================================================
// Bank Payment Generator - Field Rule Table
// =============================================================================
//
// The rule table declares, for every logical field name, the fixed width of
// its slot in the bank file and whether it is text or numeric. The built-in
// table is embedded from rules.yaml; a replacement can be loaded from a file
// named in the main configuration (rules_file).
//
// A RuleTable is immutable once built and safe for concurrent use.
//
// =============================================================================

package fieldcodec

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Kind is the encoding kind of a field.
type Kind string

const (
	// KindText values are right-padded with spaces.
	KindText Kind = "text"

	// KindNumeric values are digit strings left-padded with zeros.
	KindNumeric Kind = "numeric"
)

// Rule describes one field slot.
type Rule struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width"`
	Kind  Kind   `yaml:"kind"`
}

// RuleTable is the immutable set of rules keyed by field name.
type RuleTable struct {
	rules map[string]Rule
}

// rulesDocument is the on-disk shape of a rule table.
type rulesDocument struct {
	Rules []Rule `yaml:"rules"`
}

var (
	defaultOnce  sync.Once
	defaultTable *RuleTable
)

// DefaultRules returns the built-in rule table. The embedded document is
// parsed once; a parse failure is a build defect and panics.
func DefaultRules() *RuleTable {
	defaultOnce.Do(func() {
		table, err := LoadRules(defaultRulesYAML)
		if err != nil {
			panic(fmt.Sprintf("fieldcodec: embedded rules.yaml: %v", err))
		}
		defaultTable = table
	})
	return defaultTable
}

// LoadRulesFile reads a rule table from a YAML file.
func LoadRulesFile(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	table, err := LoadRules(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules file %s: %w", path, err)
	}

	return table, nil
}

// LoadRules parses and validates a YAML rule table.
func LoadRules(data []byte) (*RuleTable, error) {
	var doc rulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	return NewRuleTable(doc.Rules)
}

// NewRuleTable builds a table from rules, rejecting empty or duplicate
// names, non-positive widths and unknown kinds.
func NewRuleTable(rules []Rule) (*RuleTable, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule table is empty")
	}

	table := &RuleTable{rules: make(map[string]Rule, len(rules))}
	for i, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %d: name is empty", i+1)
		}
		if _, exists := table.rules[rule.Name]; exists {
			return nil, fmt.Errorf("rule %q: duplicate name", rule.Name)
		}
		if rule.Width <= 0 {
			return nil, fmt.Errorf("rule %q: width must be positive, got %d", rule.Name, rule.Width)
		}
		switch rule.Kind {
		case KindText, KindNumeric:
		default:
			return nil, fmt.Errorf("rule %q: unknown kind %q", rule.Name, rule.Kind)
		}
		table.rules[rule.Name] = rule
	}

	return table, nil
}

// Lookup returns the rule for name.
func (t *RuleTable) Lookup(name string) (Rule, bool) {
	rule, ok := t.rules[name]
	return rule, ok
}

// Names returns all field names in lexical order.
func (t *RuleTable) Names() []string {
	names := make([]string, 0, len(t.rules))
	for name := range t.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
