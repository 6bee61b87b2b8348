package videoprompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCameos_CanonicalForms(t *testing.T) {
	// All spellings of the same handle collapse to one canonical entry
	out, err := NormalizeCameos([]string{"@DhruvAgr", "dhruvagr", "  dhruvagr  "})
	require.NoError(t, err)
	assert.Equal(t, []string{"dhruvagr"}, out)
}

func TestNormalizeCameos_DropsEmpties(t *testing.T) {
	out, err := NormalizeCameos([]string{"", "  ", "@", "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, out)
}

func TestNormalizeCameos_PreservesOrder(t *testing.T) {
	out, err := NormalizeCameos([]string{"@Charlie", "@alice", "@Bob", "ALICE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "alice", "bob"}, out)
}

func TestNormalizeCameos_RejectsTooMany(t *testing.T) {
	_, err := NormalizeCameos([]string{"a", "b", "c", "d"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 3")
}

func TestNormalizeCameos_Empty(t *testing.T) {
	out, err := NormalizeCameos(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
