package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/microcrowd/engine/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// =============================================================================
// 🗄️ SQLite 存储（GORM + 纯 Go 驱动，无 CGO 依赖）
// =============================================================================

// conversationRecord 是会话快照的数据库行。
// 完整状态以 JSON 存于 Snapshot 列，常用查询字段单独建列。
type conversationRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Topic     string `gorm:"size:512"`
	Status    string `gorm:"size:32;index"`
	TurnIndex int
	MaxTurns  int
	Snapshot  []byte `gorm:"type:blob"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (conversationRecord) TableName() string { return "conversations" }

// GormStore 以 SQLite 落盘会话快照。
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore 打开（必要时创建）path 处的 SQLite 数据库并迁移表结构。
// path 为 ":memory:" 时使用内存数据库。
func NewGormStore(path string, logger *zap.Logger) (*GormStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&conversationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate conversations table: %w", err)
	}

	logger.Info("sqlite snapshot store initialized", zap.String("path", path))

	return &GormStore{
		db:     db,
		logger: logger.With(zap.String("component", "store")),
	}, nil
}

func (s *GormStore) SaveConversation(ctx context.Context, conv *types.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("conversation id is required")
	}

	snapshot, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation snapshot: %w", err)
	}

	record := &conversationRecord{
		ID:        conv.ID,
		Topic:     conv.Topic,
		Status:    string(conv.Status),
		TurnIndex: conv.TurnIndex,
		MaxTurns:  conv.MaxTurns,
		Snapshot:  snapshot,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}

	// 同一会话反复落盘，upsert 覆盖旧快照
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to save conversation snapshot: %w", err)
	}

	return nil
}

func (s *GormStore) LoadConversation(ctx context.Context, id string) (*types.Conversation, error) {
	var record conversationRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation snapshot: %w", err)
	}

	var conv types.Conversation
	if err := json.Unmarshal(record.Snapshot, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation snapshot: %w", err)
	}
	return &conv, nil
}

func (s *GormStore) ListConversationIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&conversationRecord{}).
		Order("created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return ids, nil
}

func (s *GormStore) DeleteConversation(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Delete(&conversationRecord{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("failed to delete conversation snapshot: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
