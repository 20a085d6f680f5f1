// 内存内容存储的单元测试
// 校验合并更新语义和文档缺失错误
package contentstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreMergeSemantics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Init(ctx, "ref-1", NoteDocument{
		Title:      "初始标题",
		Content:    "初始正文",
		UserID:     1,
		NotebookID: 2,
	}))

	t.Run("合并更新只改指定字段", func(t *testing.T) {
		newContent := "新正文"
		require.NoError(t, store.Save(ctx, "ref-1", DocumentUpdate{Content: &newContent}))

		doc, err := store.Get(ctx, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, "新正文", doc.Content)
		assert.Equal(t, "初始标题", doc.Title) // 未指定的字段保持原值
		assert.Equal(t, uint(1), doc.UserID)
	})

	t.Run("不存在的记录合并更新时自动初始化", func(t *testing.T) {
		title := "凭空出现"
		require.NoError(t, store.Save(ctx, "ref-new", DocumentUpdate{Title: &title}))

		doc, err := store.Get(ctx, "ref-new")
		require.NoError(t, err)
		assert.Equal(t, "凭空出现", doc.Title)
		assert.Equal(t, "", doc.Content)
	})

	t.Run("整体覆盖初始化", func(t *testing.T) {
		require.NoError(t, store.Init(ctx, "ref-1", NoteDocument{Title: "覆盖后"}))

		doc, err := store.Get(ctx, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, "覆盖后", doc.Title)
		assert.Equal(t, "", doc.Content)
	})
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.Equal(t, ErrDocumentNotFound, err)

	// 删除不存在的记录不报错
	assert.NoError(t, store.Delete(ctx, "missing"))
}
