package ideagraph

import "sort"

// TypeRules lists, for one parent type, which child types each link type accepts.
type TypeRules struct {
	Rules map[string][]string `json:"rules" yaml:"rules"`
}

// Typology maps a parent idea type to its rules.
type Typology map[string]TypeRules

// RulesFor returns the link rules declared for parentType.
func (t Typology) RulesFor(parentType string) (map[string][]string, bool) {
	r, ok := t[parentType]
	if !ok {
		return nil, false
	}
	return r.Rules, true
}

// Allows reports whether rules accept childType under linkType.
func Allows(rules map[string][]string, linkType, childType string) bool {
	for _, t := range rules[linkType] {
		if t == childType {
			return true
		}
	}
	return false
}

// SortedLinkTypes returns the link types of rules in lexical order.
func SortedLinkTypes(rules map[string][]string) []string {
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
