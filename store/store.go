package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/microcrowd/engine/types"
)

// ErrNotFound 表示请求的会话不在存储中。
var ErrNotFound = fmt.Errorf("conversation not found in store")

// SnapshotStore 是会话快照存储的统一接口。
type SnapshotStore interface {
	// SaveConversation 写入或覆盖会话快照。
	SaveConversation(ctx context.Context, conv *types.Conversation) error

	// LoadConversation 按 ID 读取快照，未找到时返回 ErrNotFound。
	LoadConversation(ctx context.Context, id string) (*types.Conversation, error)

	// ListConversationIDs 返回存储中全部会话 ID。
	ListConversationIDs(ctx context.Context) ([]string, error)

	// DeleteConversation 删除快照；删除不存在的 ID 不报错。
	DeleteConversation(ctx context.Context, id string) error

	// Close 释放底层资源。
	Close() error
}

// =============================================================================
// 💾 内存存储
// =============================================================================

// MemoryStore 是进程内的快照存储。
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*types.Conversation
}

// NewMemoryStore 创建内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]*types.Conversation)}
}

func (s *MemoryStore) SaveConversation(ctx context.Context, conv *types.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("conversation id is required")
	}

	// 深拷贝转写，避免与引擎内部状态共享底层数组
	cp := *conv
	cp.Transcript = make([]types.Utterance, len(conv.Transcript))
	copy(cp.Transcript, conv.Transcript)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conv.ID] = &cp
	return nil
}

func (s *MemoryStore) LoadConversation(ctx context.Context, id string) (*types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *conv
	cp.Transcript = make([]types.Utterance, len(conv.Transcript))
	copy(cp.Transcript, conv.Transcript)
	return &cp, nil
}

func (s *MemoryStore) ListConversationIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.convs))
	for id := range s.convs {
		out = append(out, id)
	}
	return out, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
