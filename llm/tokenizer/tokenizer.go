// Package tokenizer 提供统一的 token 计数能力，
// 供上下文窗口裁剪策略使用。
package tokenizer

// Tokenizer 是统一的 token 计数接口.
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// CountMessages 返回消息列表的总 token 数,
	// 包括每条消息的开销（角色标记、分隔符等）。
	CountMessages(messages []Message) (int, error)

	// MaxTokens 返回模型的最大上下文长度.
	MaxTokens() int

	// Name 返回分词器的名称.
	Name() string
}

// Message 是一个轻量级消息结构, 由 tokenizer 包使用
// 以避免与 llm 包的循环依赖。
type Message struct {
	Role    string
	Content string
}

// ForModel 返回给定模型的分词器：已知 tiktoken 编码的模型使用精确计数，
// 其余模型退回到启发式估计器。
func ForModel(model string) Tokenizer {
	if t, err := NewTiktokenTokenizer(model); err == nil {
		return t
	}
	return NewEstimatorTokenizer(model, 0)
}
