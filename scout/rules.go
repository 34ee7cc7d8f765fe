package scout

import (
	"fmt"
	"os"

	"github.com/luminastro/influence-engine/model"
	"gopkg.in/yaml.v3"
)

// Rule maps one line signature to a life category. Rules are supplied per
// scan invocation; the engine never hardcodes which planet helps which
// category.
type Rule struct {
	Planet   string       `yaml:"planet"`
	Angle    string       `yaml:"angle"`
	Category string       `yaml:"category"`
	Nature   model.Nature `yaml:"nature"`
}

type ruleKey struct {
	planet string
	angle  string
}

// RuleSet indexes category rules by (planet, angle tag) for per-influence
// lookup during scoring. Immutable after construction.
type RuleSet struct {
	rules []Rule
	index map[ruleKey][]Rule
}

// NewRuleSet validates and indexes the given rules.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	index := make(map[ruleKey][]Rule, len(rules))
	for i, r := range rules {
		if r.Planet == "" || r.Angle == "" || r.Category == "" {
			return nil, fmt.Errorf("rule %d: planet, angle, and category are required", i)
		}
		switch r.Nature {
		case model.NatureBeneficial, model.NatureChallenging, model.NatureNeutral:
		default:
			return nil, fmt.Errorf("rule %d (%s %s): invalid nature %q", i, r.Planet, r.Angle, r.Nature)
		}
		key := ruleKey{planet: r.Planet, angle: r.Angle}
		index[key] = append(index[key], r)
	}
	return &RuleSet{rules: rules, index: index}, nil
}

// LoadRules reads a YAML rule file: a top-level `rules:` list.
func LoadRules(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return NewRuleSet(doc.Rules)
}

// Len reports the number of rules in the set.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// For returns the rules matching a line, with natures adjusted for the
// line's own polarity: a non-harmonious aspect flips beneficial and
// challenging, since a hard aspect turns a planet's support into friction
// (and vice versa).
func (rs *RuleSet) For(line model.Line) []Rule {
	if rs == nil {
		return nil
	}
	matched := rs.index[ruleKey{planet: string(line.PrimaryBody()), angle: line.AngleTag()}]
	if len(matched) == 0 {
		return nil
	}

	aspect, isAspect := line.(model.AspectLine)
	if !isAspect || aspect.Harmonious {
		return matched
	}

	flipped := make([]Rule, len(matched))
	for i, r := range matched {
		flipped[i] = r
		switch r.Nature {
		case model.NatureBeneficial:
			flipped[i].Nature = model.NatureChallenging
		case model.NatureChallenging:
			flipped[i].Nature = model.NatureBeneficial
		}
	}
	return flipped
}
