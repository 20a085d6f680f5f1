// 统计服务的单元测试
// 校验读取时计算的统计值与子行实际数量完全一致
package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"notedeck/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestNoteCounts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	const userID = uint(1)

	notebook := database.Notebook{UserID: userID, Name: "本"}
	require.NoError(t, db.Create(&notebook).Error)

	note := database.Note{UserID: userID, NotebookID: notebook.ID, ContentRef: "ref-agg-1", Title: "统计对象"}
	require.NoError(t, db.Create(&note).Error)

	// 3个标签、2个文件、4个任务（其中2个已完成）
	for i := 0; i < 3; i++ {
		tag := database.Tag{UserID: userID, Name: fmt.Sprintf("标签%d", i)}
		require.NoError(t, db.Create(&tag).Error)
		require.NoError(t, db.Create(&database.NoteTag{NoteID: note.ID, TagID: tag.ID}).Error)
	}
	for i := 0; i < 2; i++ {
		file := database.File{UserID: userID, NoteID: &note.ID,
			StoragePath: fmt.Sprintf("/blob/%d", i), Filename: fmt.Sprintf("f%d.txt", i)}
		require.NoError(t, db.Create(&file).Error)
	}
	for i := 0; i < 4; i++ {
		task := database.Task{UserID: userID, NoteID: &note.ID,
			Label: fmt.Sprintf("任务%d", i), Completed: i < 2}
		require.NoError(t, db.Create(&task).Error)
	}

	counts, err := svc.NoteCounts([]uint{note.ID})
	require.NoError(t, err)
	require.Contains(t, counts, note.ID)

	assert.Equal(t, int64(3), counts[note.ID].TagCount)
	assert.Equal(t, int64(2), counts[note.ID].FileCount)
	assert.Equal(t, int64(4), counts[note.ID].TaskCount)
	assert.Equal(t, int64(2), counts[note.ID].CompletedTaskCount)
}

func TestNoteCountsEmptyInput(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	counts, err := svc.NoteCounts(nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestNotebookViewsExcludeTrashed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	const userID = uint(1)

	notebook := database.Notebook{UserID: userID, Name: "本"}
	require.NoError(t, db.Create(&notebook).Error)

	seed := []database.Note{
		{UserID: userID, NotebookID: notebook.ID, ContentRef: "r1", Title: "活动", Pinned: true},
		{UserID: userID, NotebookID: notebook.ID, ContentRef: "r2", Title: "归档", Archived: true},
		{UserID: userID, NotebookID: notebook.ID, ContentRef: "r3", Title: "普通"},
		{UserID: userID, NotebookID: notebook.ID, ContentRef: "r4", Title: "回收站", Trashed: true},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	views, err := svc.NotebookViews([]database.Notebook{notebook})
	require.NoError(t, err)
	require.Len(t, views, 1)

	// 回收站笔记不计入任何统计口径
	assert.Equal(t, int64(3), views[0].NoteCount)
	assert.Equal(t, int64(1), views[0].PinnedNotes)
	assert.Equal(t, int64(1), views[0].ArchivedNotes)
}

func TestStackViews(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	const userID = uint(1)

	stack := database.Stack{UserID: userID, Name: "栈"}
	require.NoError(t, db.Create(&stack).Error)

	nb1 := database.Notebook{UserID: userID, StackID: &stack.ID, Name: "本一"}
	nb2 := database.Notebook{UserID: userID, StackID: &stack.ID, Name: "本二"}
	require.NoError(t, db.Create(&nb1).Error)
	require.NoError(t, db.Create(&nb2).Error)

	// 栈外笔记本不参与统计
	loose := database.Notebook{UserID: userID, Name: "散装"}
	require.NoError(t, db.Create(&loose).Error)

	notes := []database.Note{
		{UserID: userID, NotebookID: nb1.ID, ContentRef: "s1", Title: "一"},
		{UserID: userID, NotebookID: nb1.ID, ContentRef: "s2", Title: "二", Trashed: true},
		{UserID: userID, NotebookID: nb2.ID, ContentRef: "s3", Title: "三"},
		{UserID: userID, NotebookID: loose.ID, ContentRef: "s4", Title: "栈外"},
	}
	for i := range notes {
		require.NoError(t, db.Create(&notes[i]).Error)
	}

	views, err := svc.StackViews([]database.Stack{stack})
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, int64(2), views[0].NotebookCount)
	assert.Equal(t, int64(2), views[0].TotalNotes)
}
