package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants(t *testing.T) {
	assert.Equal(t, []string{"cat", "cat", "cat"}, Variants("cat", 3, Identical))
	assert.Equal(t, []string{"cat, variation 1", "cat, variation 2"}, Variants("cat", 2, Suffix))
	assert.Empty(t, Variants("cat", 0, Suffix))
}

func TestParseVariation(t *testing.T) {
	v, err := ParseVariation("")
	require.NoError(t, err)
	assert.Equal(t, Identical, v)

	v, err = ParseVariation(" Suffix ")
	require.NoError(t, err)
	assert.Equal(t, Suffix, v)

	_, err = ParseVariation("random")
	assert.Error(t, err)
}
