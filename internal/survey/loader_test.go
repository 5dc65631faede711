package survey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDefinition = `
version: "2.0.0"
entry_section: main
entry_question: q1
sections:
  main:
    q1:
      id: q1
      text: "Did anything happen?"
      type: single_choice
      options:
        a:
          label: "Yes"
          next: q2
        b:
          label: "No"
          next: END
    q2:
      id: q2
      text: "Describe it"
      type: free_text
      next: END
      constraints:
        required: true
`

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefinition(t *testing.T) {
	def, err := LoadDefinition(writeDefinition(t, sampleDefinition))
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", def.Version)
	assert.Equal(t, "main", def.EntrySection)

	q, ok := def.Question("main", "q2")
	require.True(t, ok)
	assert.Equal(t, TypeFreeText, q.Type)
	require.NotNil(t, q.Constraints)
	assert.True(t, q.Constraints.Required)
}

func TestLoadDefinitionRejectsBrokenGraph(t *testing.T) {
	broken := `
version: "1.0.0"
entry_section: main
entry_question: q1
sections:
  main:
    q1:
      id: q1
      text: "Broken"
      type: free_text
      next: q_missing
`
	_, err := LoadDefinition(writeDefinition(t, broken))
	require.Error(t, err)
}

func TestLoadDefinitionMissingFile(t *testing.T) {
	_, err := LoadDefinition(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadDefinitionOrDefault(t *testing.T) {
	t.Run("empty path falls back to builtin", func(t *testing.T) {
		def, err := LoadDefinitionOrDefault("", "0.3.0")
		require.NoError(t, err)
		assert.Equal(t, "0.3.0", def.Version)
		assert.Equal(t, "min_criteria", def.EntrySection)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		def, err := LoadDefinitionOrDefault(writeDefinition(t, sampleDefinition), "0.3.0")
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", def.Version)
	})
}
