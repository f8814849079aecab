package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	models "agora/internal/domain/models/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTypology = `
ontology:
  Issue: [Question]
  Question: [GenericIdeaNode]
  Position: [GenericIdeaNode]
  SupportArgument: [Argument]
  Argument: [GenericIdeaNode]
  ResponseRelation: [InclusionRelation]
default:
  Question:
    rules:
      ResponseRelation: [Position]
      InclusionRelation: [Question, GenericIdeaNode]
discussions:
  d-1:
    ParentX:
      rules:
        LinkY: [ChildZ]
`

func TestParseTypeRegistry(t *testing.T) {
	reg, err := ParseTypeRegistry([]byte(sampleTypology))
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("discussion typology", func(t *testing.T) {
		typ, err := reg.Typology(ctx, "d-1")
		require.NoError(t, err)
		rules, ok := typ.RulesFor("ParentX")
		require.True(t, ok)
		assert.Equal(t, []string{"ChildZ"}, rules["LinkY"])
	})

	t.Run("falls back to default typology", func(t *testing.T) {
		typ, err := reg.Typology(ctx, "unknown")
		require.NoError(t, err)
		rules, ok := typ.RulesFor("Question")
		require.True(t, ok)
		assert.True(t, models.Allows(rules, "ResponseRelation", "Position"))
		assert.False(t, models.Allows(rules, "ResponseRelation", "Question"))
	})
}

func TestSupertypes(t *testing.T) {
	reg, err := ParseTypeRegistry([]byte(sampleTypology))
	require.NoError(t, err)

	tests := []struct {
		term string
		want []string
	}{
		{term: "Issue", want: []string{"Question", "GenericIdeaNode"}},
		{term: "SupportArgument", want: []string{"Argument", "GenericIdeaNode"}},
		{term: "ResponseRelation", want: []string{"InclusionRelation"}},
		{term: "GenericIdeaNode", want: nil},
		{term: "Unknown", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := reg.Supertypes(context.Background(), tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupertypesToleratesCycles(t *testing.T) {
	reg, err := ParseTypeRegistry([]byte(`
ontology:
  A: [B]
  B: [A]
`))
	require.NoError(t, err)

	got, err := reg.Supertypes(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, got)
}

func TestParseTypeRegistryRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed yaml", yaml: "ontology: [unterminated"},
		{name: "self supertype", yaml: "ontology:\n  A: [A]\n"},
		{name: "empty child type", yaml: "default:\n  P:\n    rules:\n      L: ['']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTypeRegistry([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadTypeRegistry(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		reg, err := LoadTypeRegistry("")
		require.NoError(t, err)
		rules, ok := reg.Default.RulesFor(models.DefaultIdeaType)
		require.True(t, ok)
		assert.True(t, models.Allows(rules, models.DefaultLinkType, models.DefaultIdeaType))
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "typology.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleTypology), 0o644))

		reg, err := LoadTypeRegistry(path)
		require.NoError(t, err)
		assert.Contains(t, reg.Discussions, "d-1")
		// A file without a default section still gets the built-in one
		_, ok := reg.Default.RulesFor("Question")
		assert.True(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTypeRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
