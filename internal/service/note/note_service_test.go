// 笔记服务的单元测试
// 覆盖创建/保存内容的版本号不对称、状态流转互斥链和文档缺失容错
package note

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"notedeck/internal/contentstore"
	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/service/organization"
)

// setupService 创建基于内存数据库和内存内容存储的笔记服务
func setupService(t *testing.T) (Service, *contentstore.MemoryStore, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := contentstore.NewMemoryStore()
	orgService := organization.NewService(db)
	return NewService(db, store, orgService), store, db
}

func TestCreateNote(t *testing.T) {
	svc, store, db := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	t.Run("标题缺失时拒绝创建", func(t *testing.T) {
		_, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: ""})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("创建时分配内容引用并初始化文档", func(t *testing.T) {
		created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{
			Title:   "第一篇",
			Content: "正文内容",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ContentRef)
		assert.Equal(t, 1, created.Version)
		assert.True(t, created.Synced)
		assert.False(t, created.Pinned)
		assert.False(t, created.Archived)
		assert.False(t, created.Trashed)

		doc, err := store.Get(ctx, created.ContentRef)
		require.NoError(t, err)
		assert.Equal(t, "正文内容", doc.Content)
		assert.Equal(t, "第一篇", doc.Title)
	})

	t.Run("缺省笔记本时自动解析", func(t *testing.T) {
		created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "无笔记本"})
		require.NoError(t, err)
		assert.NotZero(t, created.NotebookID)

		var notebook database.Notebook
		require.NoError(t, db.First(&notebook, created.NotebookID).Error)
		assert.Equal(t, userID, notebook.UserID)
	})

	t.Run("指定他人的笔记本返回未找到", func(t *testing.T) {
		orgService := organization.NewService(db)
		foreign, err := orgService.CreateNotebook(uint(2), &organization.CreateNotebookRequest{Name: "他人的"})
		require.NoError(t, err)

		_, err = svc.CreateNote(ctx, userID, &CreateNoteRequest{
			Title:      "越权",
			NotebookID: &foreign.ID,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestSaveContentVersionAsymmetry(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "版本测试"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)

	// 元数据更新不递增版本号
	newTitle := "改名"
	updated, err := svc.UpdateNote(ctx, userID, created.ID, &UpdateNoteRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	assert.Equal(t, "改名", updated.Title)

	// 内容保存递增版本号并标记已同步
	saved, err := svc.SaveContent(ctx, userID, created.ID, &SaveContentRequest{Content: "新正文"})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
	assert.True(t, saved.Synced)

	saved, err = svc.SaveContent(ctx, userID, created.ID, &SaveContentRequest{Content: "再改"})
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Version)
}

func TestLifecycleExclusivity(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "状态机"})
	require.NoError(t, err)

	// 置顶后归档：归档清除置顶
	pinned, err := svc.Pin(userID, created.ID)
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)

	archived, err := svc.Archive(userID, created.ID)
	require.NoError(t, err)
	assert.False(t, archived.Pinned)
	assert.True(t, archived.Archived)

	// 移入回收站：置顶和归档都清除
	trashed, err := svc.Trash(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.False(t, trashed.Pinned)
	assert.False(t, trashed.Archived)
	assert.True(t, trashed.Trashed)

	// 恢复后无条件回到活动状态，归档状态不被记忆
	restored, err := svc.Restore(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.False(t, restored.Pinned)
	assert.False(t, restored.Archived)
	assert.False(t, restored.Trashed)
}

func TestLifecycleBumpsLastModified(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "时间戳"})
	require.NoError(t, err)

	pinned, err := svc.Pin(userID, created.ID)
	require.NoError(t, err)
	assert.True(t, pinned.LastModified.After(created.LastModified) ||
		pinned.LastModified.Equal(created.LastModified))

	unpinned, err := svc.Unpin(userID, created.ID)
	require.NoError(t, err)
	assert.False(t, unpinned.LastModified.Before(pinned.LastModified))
}

func TestTrashSyncsContentDocument(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "回收站同步"})
	require.NoError(t, err)

	_, err = svc.Trash(ctx, userID, created.ID)
	require.NoError(t, err)

	doc, err := store.Get(ctx, created.ContentRef)
	require.NoError(t, err)
	assert.True(t, doc.IsTrashed)

	_, err = svc.Restore(ctx, userID, created.ID)
	require.NoError(t, err)

	doc, err = store.Get(ctx, created.ContentRef)
	require.NoError(t, err)
	assert.False(t, doc.IsTrashed)
}

func TestMissingContentDocumentReadsEmpty(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{
		Title:   "文档丢失",
		Content: "会消失的内容",
	})
	require.NoError(t, err)

	// 文档被外部删除后，读取按空内容处理而不是报错
	require.NoError(t, store.Delete(ctx, created.ContentRef))

	view, err := svc.GetNote(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "", view.Content)
	assert.Equal(t, created.ID, view.ID)
}

func TestOwnershipCollapse(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, uint(1), &CreateNoteRequest{Title: "私有笔记"})
	require.NoError(t, err)

	// 他人的笔记和不存在的笔记返回完全相同的错误码
	_, errForeign := svc.GetNote(ctx, uint(2), created.ID)
	require.Error(t, errForeign)
	assert.True(t, apperrors.IsNotFound(errForeign))

	_, errAbsent := svc.GetNote(ctx, uint(2), 987654)
	require.Error(t, errAbsent)
	assert.Equal(t, apperrors.CodeOf(errForeign), apperrors.CodeOf(errAbsent))
}

func TestDeleteNoteCascade(t *testing.T) {
	svc, store, db := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	created, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "待删笔记"})
	require.NoError(t, err)

	// 准备关联数据：任务、标签关联、文件
	task := database.Task{UserID: userID, NoteID: &created.ID, Label: "附属任务"}
	require.NoError(t, db.Create(&task).Error)

	tag := database.Tag{UserID: userID, Name: "标签"}
	require.NoError(t, db.Create(&tag).Error)
	require.NoError(t, db.Create(&database.NoteTag{NoteID: created.ID, TagID: tag.ID}).Error)

	file := database.File{UserID: userID, NoteID: &created.ID, StoragePath: "/blob/a", Filename: "a.pdf"}
	require.NoError(t, db.Create(&file).Error)

	require.NoError(t, svc.DeleteNote(ctx, userID, created.ID))

	var taskCount, linkCount int64
	db.Model(&database.Task{}).Where("note_id = ?", created.ID).Count(&taskCount)
	db.Model(&database.NoteTag{}).Where("note_id = ?", created.ID).Count(&linkCount)
	assert.Equal(t, int64(0), taskCount)
	assert.Equal(t, int64(0), linkCount)

	// 文件保留但解除挂接
	var survivedFile database.File
	require.NoError(t, db.First(&survivedFile, file.ID).Error)
	assert.Nil(t, survivedFile.NoteID)

	// 内容文档随之删除
	_, err = store.Get(ctx, created.ContentRef)
	assert.Equal(t, contentstore.ErrDocumentNotFound, err)
}

func TestListAndSearchNotes(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	active, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "周报汇总"})
	require.NoError(t, err)
	doomed, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "周报草稿"})
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: "会议记录"})
	require.NoError(t, err)

	_, err = svc.Trash(ctx, userID, doomed.ID)
	require.NoError(t, err)

	t.Run("默认排除回收站笔记", func(t *testing.T) {
		notes, err := svc.ListNotes(userID, nil)
		require.NoError(t, err)
		assert.Len(t, notes, 2)
	})

	t.Run("按回收站状态过滤", func(t *testing.T) {
		trashed := true
		notes, err := svc.ListNotes(userID, &ListNotesFilter{Trashed: &trashed})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, doomed.ID, notes[0].ID)
	})

	t.Run("标题子串搜索不含回收站", func(t *testing.T) {
		notes, err := svc.SearchNotes(userID, "周报")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, active.ID, notes[0].ID)
	})
}

func TestListNotesPaged(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	const userID = uint(1)

	for _, title := range []string{"一", "二", "三", "四", "五"} {
		_, err := svc.CreateNote(ctx, userID, &CreateNoteRequest{Title: title})
		require.NoError(t, err)
	}

	t.Run("按页返回并报告总数", func(t *testing.T) {
		notes, total, err := svc.ListNotesPaged(userID, nil, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, notes, 2)
	})

	t.Run("末页只含剩余条目", func(t *testing.T) {
		notes, total, err := svc.ListNotesPaged(userID, nil, 3, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, notes, 1)
	})

	t.Run("超出范围的页返回空列表", func(t *testing.T) {
		notes, total, err := svc.ListNotesPaged(userID, nil, 4, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Empty(t, notes)
	})

	t.Run("各页条目互不重复", func(t *testing.T) {
		seen := map[uint]bool{}
		for page := 1; page <= 3; page++ {
			notes, _, err := svc.ListNotesPaged(userID, nil, page, 2)
			require.NoError(t, err)
			for _, n := range notes {
				assert.False(t, seen[n.ID])
				seen[n.ID] = true
			}
		}
		assert.Len(t, seen, 5)
	})

	t.Run("回收站笔记不计入总数", func(t *testing.T) {
		notes, total, err := svc.ListNotesPaged(userID, nil, 1, 10)
		require.NoError(t, err)
		require.Len(t, notes, 5)

		_, err = svc.Trash(ctx, userID, notes[0].ID)
		require.NoError(t, err)

		_, total, err = svc.ListNotesPaged(userID, nil, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
	})
}
