package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, "Serverless Static Website Template", s.Hero.Title)
	assert.Len(t, s.Features, 8)
	assert.Len(t, s.QuickStart, 4)
	assert.Len(t, s.Architecture.Nodes, 5)
	assert.Len(t, s.Architecture.Flows, 4)
	for i, step := range s.QuickStart {
		assert.Equal(t, i+1, step.Number)
	}
}

func TestDefaultReturnsFreshCopy(t *testing.T) {
	a := Default()
	a.Features[0].Title = "changed"
	assert.NotEqual(t, "changed", Default().Features[0].Title)
}

func TestLoadEmptyPath(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
hero:
  title: My Product
features:
  - id: only
    icon: "*"
    title: Only Feature
    description: The one thing
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "My Product", s.Hero.Title)
	require.Len(t, s.Features, 1)
	assert.Equal(t, "only", s.Features[0].ID)
	// Untouched sections keep their defaults.
	assert.Len(t, s.QuickStart, 4)
	assert.Equal(t, "AWS SLS", s.Title)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yml")
	require.NoError(t, os.WriteFile(path, []byte("heroes:\n  title: typo\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yml")
	require.NoError(t, Default().Save(path))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Site)
		want   string
	}{
		{"empty hero title", func(s *Site) { s.Hero.Title = "" }, "hero title"},
		{"duplicate feature", func(s *Site) { s.Features[1].ID = s.Features[0].ID }, "duplicate id"},
		{"step gap", func(s *Site) { s.QuickStart[2].Number = 7 }, "number 7, want 3"},
		{"unknown language", func(s *Site) { s.CodeExamples[0].Language = "cobol" }, "unknown language"},
		{"unknown node type", func(s *Site) { s.Architecture.Nodes[0].Type = "queue" }, "unknown type"},
		{"dangling flow", func(s *Site) { s.Architecture.Flows[0].To = "lambda" }, `unknown node "lambda"`},
		{"nav without section", func(s *Site) { s.Nav[0].Section = "" }, "section is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	s := Default()
	s.Hero.Title = ""
	s.CodeExamples[0].Language = "cobol"
	err := s.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "hero title") && strings.Contains(err.Error(), "cobol"))
}

func TestActiveExample(t *testing.T) {
	s := Default()

	ex, ok := s.ActiveExample("config")
	require.True(t, ok)
	assert.Equal(t, "config", ex.ID)

	ex, ok = s.ActiveExample("does-not-exist")
	require.True(t, ok)
	assert.Equal(t, s.CodeExamples[0].ID, ex.ID)

	s.CodeExamples = nil
	_, ok = s.ActiveExample("config")
	assert.False(t, ok)
}

func TestArchitectureNode(t *testing.T) {
	n, ok := Default().Architecture.Node("s3")
	require.True(t, ok)
	assert.Equal(t, NodeStorage, n.Type)

	_, ok = Default().Architecture.Node("lambda")
	assert.False(t, ok)
}
