package synthesis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidates(t *testing.T) {
	reply := `1. First variant here
- Second variant here

* "Third variant here"
Fourth variant here
Fifth is over the count`

	got := parseCandidates(reply, 4)
	require.Len(t, got, 4)
	assert.Equal(t, "First variant here", got[0])
	assert.Equal(t, "Second variant here", got[1])
	assert.Equal(t, "Third variant here", got[2])
	assert.Equal(t, "Fourth variant here", got[3])
}

func TestParseCandidates_EmptyReply(t *testing.T) {
	assert.Empty(t, parseCandidates("", 3))
	assert.Empty(t, parseCandidates("\n\n  \n", 3))
}

func TestCosine(t *testing.T) {
	sim, err := cosine([]float32{1, 0, 0}, []float32{1, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)

	// opposite vectors clamp to 0 rather than going negative
	sim, err = cosine([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosine_Errors(t *testing.T) {
	_, err := cosine([]float32{1}, []float32{1, 2})
	require.Error(t, err)

	_, err = cosine(nil, nil)
	require.Error(t, err)

	_, err = cosine([]float32{0, 0}, []float32{1, 1})
	require.Error(t, err)
}

func TestCosine_InRange(t *testing.T) {
	a := []float32{0.3, -0.2, 0.9, 0.1}
	b := []float32{-0.5, 0.8, 0.2, -0.4}
	sim, err := cosine(a, b)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(sim))
	assert.GreaterOrEqual(t, sim, 0.0)
	assert.LessOrEqual(t, sim, 1.0)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	c := New("", "llama3", "nomic-embed-text")
	require.NotNil(t, c)
	assert.Equal(t, "llama3", c.model)
	assert.Equal(t, "nomic-embed-text", c.embedModel)
}
