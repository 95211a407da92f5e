package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/microcrowd/engine/llm"
	"github.com/microcrowd/engine/llm/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHistory(n int) []llm.Message {
	out := make([]llm.Message, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Speaker %d: %s", i, strings.Repeat("word ", 20)),
		})
	}
	return out
}

func TestWindowKeepsEverythingUnderBudget(t *testing.T) {
	w := NewWindow(tokenizer.NewEstimatorTokenizer("test", 0), 100000)
	system := llm.Message{Role: llm.RoleSystem, Content: "be yourself"}
	history := testHistory(10)

	got := w.Fit(system, history)
	require.Len(t, got, 11)
	assert.Equal(t, system, got[0])
	assert.Equal(t, history, got[1:])
}

func TestWindowDropsOldestFirst(t *testing.T) {
	// 每条历史约 25 token；预算只够系统提示加两三条
	w := NewWindow(tokenizer.NewEstimatorTokenizer("test", 0), 80)
	system := llm.Message{Role: llm.RoleSystem, Content: "be yourself"}
	history := testHistory(10)

	got := w.Fit(system, history)
	require.NotEmpty(t, got)
	assert.Equal(t, system, got[0])
	assert.Less(t, len(got), 11)

	// 保留的是最新后缀
	kept := got[1:]
	assert.Equal(t, history[len(history)-len(kept):], kept)
}

func TestWindowAlwaysKeepsNewestMessage(t *testing.T) {
	w := NewWindow(tokenizer.NewEstimatorTokenizer("test", 0), 1)
	system := llm.Message{Role: llm.RoleSystem, Content: strings.Repeat("long system prompt ", 50)}
	history := testHistory(5)

	got := w.Fit(system, history)
	require.Len(t, got, 2)
	assert.Equal(t, system, got[0])
	assert.Equal(t, history[4], got[1])
}

func TestWindowEmptyHistory(t *testing.T) {
	w := NewWindow(tokenizer.NewEstimatorTokenizer("test", 0), 50)
	system := llm.Message{Role: llm.RoleSystem, Content: "be yourself"}

	got := w.Fit(system, nil)
	require.Len(t, got, 1)
	assert.Equal(t, system, got[0])
}

func TestWindowDefaultBudget(t *testing.T) {
	tok := tokenizer.NewEstimatorTokenizer("test", 2048)
	w := NewWindow(tok, 0)
	assert.Equal(t, 2048, w.budget)
}
