// Package contentstore 提供笔记正文的文档存储适配层
// 笔记正文与关系型元数据分离存储，通过笔记行上的content_ref关联
// 两个存储之间没有两阶段提交：元数据写入成功而文档写入失败时，
// 读取路径必须把"文档不存在"当作空内容处理，而不是报错
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notedeck/config"
)

// ErrDocumentNotFound 内容文档不存在
var ErrDocumentNotFound = errors.New("content document not found")

// NoteDocument 笔记内容文档
// 时间戳由存储端在写入时分配
type NoteDocument struct {
	Title      string    `bson:"title" json:"title"`             // 笔记标题（冗余，便于文档侧检索）
	Content    string    `bson:"content" json:"content"`         // 笔记正文
	UserID     uint      `bson:"user_id" json:"user_id"`         // 所属用户ID
	NotebookID uint      `bson:"notebook_id" json:"notebook_id"` // 所属笔记本ID
	IsTrashed  bool      `bson:"is_trashed" json:"is_trashed"`   // 是否在回收站
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`   // 文档创建时间，存储端分配
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`   // 文档更新时间，存储端分配
}

// DocumentUpdate 内容文档的合并更新
// 仅更新非空指针字段，其余字段保持原值
type DocumentUpdate struct {
	Title      *string // 新标题
	Content    *string // 新正文
	NotebookID *uint   // 新所属笔记本
	IsTrashed  *bool   // 新回收站状态
}

// ContentStore 内容文档存储接口
type ContentStore interface {
	// Init 以完整文档初始化ref对应的内容记录，已存在时整体覆盖
	Init(ctx context.Context, ref string, doc NoteDocument) error

	// Save 合并更新ref对应的内容记录，记录不存在时自动初始化
	Save(ctx context.Context, ref string, update DocumentUpdate) error

	// Get 获取ref对应的内容记录，不存在时返回ErrDocumentNotFound
	Get(ctx context.Context, ref string) (*NoteDocument, error)

	// Delete 删除ref对应的内容记录，不存在时不报错
	Delete(ctx context.Context, ref string) error

	// Close 释放底层连接
	Close(ctx context.Context) error
}

// New 根据配置创建内容存储实例
// 参数:
//
//	ctx - 上下文
//	cfg - 内容存储配置
//
// 返回:
//
//	ContentStore - 内容存储实例
//	error - 错误信息
func New(ctx context.Context, cfg config.ContentStoreConfig) (ContentStore, error) {
	switch cfg.Driver {
	case "mongo":
		return NewMongoStore(ctx, cfg)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported content store driver: %s", cfg.Driver)
	}
}
