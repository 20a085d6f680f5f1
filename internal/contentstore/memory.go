package contentstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 基于内存的内容文档存储，用于测试和本地开发
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]NoteDocument
}

// NewMemoryStore 创建内存内容存储实例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]NoteDocument)}
}

// Init 以完整文档初始化内容记录，已存在时整体覆盖
func (s *MemoryStore) Init(ctx context.Context, ref string, doc NoteDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	s.docs[ref] = doc
	return nil
}

// Save 合并更新内容记录，记录不存在时自动初始化
func (s *MemoryStore) Save(ctx context.Context, ref string, update DocumentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	doc, ok := s.docs[ref]
	if !ok {
		doc = NoteDocument{CreatedAt: now}
	}
	if update.Title != nil {
		doc.Title = *update.Title
	}
	if update.Content != nil {
		doc.Content = *update.Content
	}
	if update.NotebookID != nil {
		doc.NotebookID = *update.NotebookID
	}
	if update.IsTrashed != nil {
		doc.IsTrashed = *update.IsTrashed
	}
	doc.UpdatedAt = now
	s.docs[ref] = doc
	return nil
}

// Get 获取内容记录，不存在时返回ErrDocumentNotFound
func (s *MemoryStore) Get(ctx context.Context, ref string) (*NoteDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[ref]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	result := doc
	return &result, nil
}

// Delete 删除内容记录，不存在时不报错
func (s *MemoryStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, ref)
	return nil
}

// Close 内存存储无需释放资源
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
