package config

import (
	"context"
	"fmt"
	"os"

	models "agora/internal/domain/models/ideagraph"

	"gopkg.in/yaml.v3"
)

// TypeRegistry holds the type hierarchy and the typologies of every discussion.
//
// File layout:
//
//	ontology:              # term -> direct supertypes, nearest first
//	  Issue: [Question]
//	default:               # typology used by discussions without their own
//	  Question:
//	    rules:
//	      InclusionRelation: [Issue, Question]
//	discussions:
//	  <discussion id>:
//	    Question: ...
type TypeRegistry struct {
	Ontology    map[string][]string        `yaml:"ontology"`
	Default     models.Typology            `yaml:"default"`
	Discussions map[string]models.Typology `yaml:"discussions"`
}

// DefaultTypeRegistry returns the registry used when no TYPOLOGY_FILE is set:
// generic ideas may contain generic ideas, nothing else is declared.
func DefaultTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		Ontology: map[string][]string{},
		Default: models.Typology{
			models.DefaultIdeaType: {Rules: map[string][]string{
				models.DefaultLinkType: {models.DefaultIdeaType},
			}},
		},
		Discussions: map[string]models.Typology{},
	}
}

// LoadTypeRegistry reads a registry from a YAML file. An empty path yields the defaults.
func LoadTypeRegistry(path string) (*TypeRegistry, error) {
	if path == "" {
		return DefaultTypeRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read typology file: %w", err)
	}
	return ParseTypeRegistry(data)
}

// ParseTypeRegistry decodes a YAML registry
func ParseTypeRegistry(data []byte) (*TypeRegistry, error) {
	reg := &TypeRegistry{}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("parse typology: %w", err)
	}
	if reg.Ontology == nil {
		reg.Ontology = map[string][]string{}
	}
	if reg.Discussions == nil {
		reg.Discussions = map[string]models.Typology{}
	}
	if len(reg.Default) == 0 {
		reg.Default = DefaultTypeRegistry().Default
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *TypeRegistry) validate() error {
	check := func(scope string, t models.Typology) error {
		for parent, rules := range t {
			if parent == "" {
				return fmt.Errorf("typology %s: empty parent type", scope)
			}
			for link, children := range rules.Rules {
				if link == "" {
					return fmt.Errorf("typology %s: parent %s has an empty link type", scope, parent)
				}
				for _, child := range children {
					if child == "" {
						return fmt.Errorf("typology %s: %s -[%s]-> empty child type", scope, parent, link)
					}
				}
			}
		}
		return nil
	}

	if err := check("default", r.Default); err != nil {
		return err
	}
	for id, t := range r.Discussions {
		if err := check(id, t); err != nil {
			return err
		}
	}
	for term, supers := range r.Ontology {
		for _, s := range supers {
			if s == term {
				return fmt.Errorf("ontology: %s is declared as its own supertype", term)
			}
		}
	}
	return nil
}

// Supertypes returns every ancestor of term, nearest first. Ties keep the
// declared order. Cycles in the ontology are tolerated.
func (r *TypeRegistry) Supertypes(_ context.Context, term string) ([]string, error) {
	var out []string
	seen := map[string]bool{term: true}
	frontier := []string{term}

	for len(frontier) > 0 {
		var next []string
		for _, t := range frontier {
			for _, s := range r.Ontology[t] {
				if seen[s] {
					continue
				}
				seen[s] = true
				out = append(out, s)
				next = append(next, s)
			}
		}
		frontier = next
	}
	return out, nil
}

// Typology returns the typology of a discussion, falling back to the default one
func (r *TypeRegistry) Typology(_ context.Context, discussionID string) (models.Typology, error) {
	if t, ok := r.Discussions[discussionID]; ok && len(t) > 0 {
		return t, nil
	}
	return r.Default, nil
}
