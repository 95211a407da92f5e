package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimator_CountTokens(t *testing.T) {
	e := NewEstimatorTokenizer("any-model", 0)

	n, err := e.CountTokens("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = e.CountTokens("hello world, this is a test sentence")
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.Less(t, n, 20)

	// Non-empty text never estimates to zero.
	n, err = e.CountTokens("a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEstimator_CountMessages(t *testing.T) {
	e := NewEstimatorTokenizer("any-model", 0)

	msgs := []Message{
		{Role: "system", Content: "you are a moderator"},
		{Role: "user", Content: "what do you think about this product?"},
	}
	total, err := e.CountMessages(msgs)
	require.NoError(t, err)

	single, err := e.CountMessages(msgs[:1])
	require.NoError(t, err)
	assert.Greater(t, total, single)
}

func TestEstimator_Defaults(t *testing.T) {
	e := NewEstimatorTokenizer("m", 0)
	assert.Equal(t, 4096, e.MaxTokens())
	assert.Equal(t, "estimator", e.Name())
}

func TestNewTiktokenTokenizer_ModelLookup(t *testing.T) {
	tk, err := NewTiktokenTokenizer("gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, 128000, tk.MaxTokens())

	// Prefix match: versioned model names resolve to the base encoding.
	tk, err = NewTiktokenTokenizer("gpt-4o-2024-08-06")
	require.NoError(t, err)
	assert.Equal(t, "tiktoken/o200k_base", tk.Name())

	_, err = NewTiktokenTokenizer("some-unknown-model")
	require.Error(t, err)
}

func TestForModel_FallsBackToEstimator(t *testing.T) {
	tok := ForModel("totally-unknown-model")
	assert.Equal(t, "estimator", tok.Name())

	tok = ForModel("gpt-4")
	assert.Contains(t, tok.Name(), "tiktoken")
}
