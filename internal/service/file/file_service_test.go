// 文件元数据服务的单元测试
package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
)

func setupService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db), db
}

func createNote(t *testing.T, db *gorm.DB, userID uint) *database.Note {
	notebook := database.Notebook{UserID: userID, Name: "本"}
	require.NoError(t, db.Create(&notebook).Error)
	note := database.Note{UserID: userID, NotebookID: notebook.ID, ContentRef: "ref-file-test", Title: "附件宿主"}
	require.NoError(t, db.Create(&note).Error)
	return &note
}

func TestFileAttachDetach(t *testing.T) {
	svc, db := setupService(t)
	const userID = uint(1)

	note := createNote(t, db, userID)

	created, err := svc.CreateFile(userID, &CreateFileRequest{
		StoragePath: "/blob/2026/report.pdf",
		Filename:    "report.pdf",
		MimeType:    "application/pdf",
		Size:        1024,
	})
	require.NoError(t, err)
	assert.Nil(t, created.NoteID)

	t.Run("挂接到笔记", func(t *testing.T) {
		updated, err := svc.UpdateFile(userID, created.ID, &UpdateFileRequest{NoteID: &note.ID})
		require.NoError(t, err)
		require.NotNil(t, updated.NoteID)
		assert.Equal(t, note.ID, *updated.NoteID)
	})

	t.Run("解除挂接", func(t *testing.T) {
		zero := uint(0)
		updated, err := svc.UpdateFile(userID, created.ID, &UpdateFileRequest{NoteID: &zero})
		require.NoError(t, err)
		assert.Nil(t, updated.NoteID)
	})

	t.Run("挂接他人的笔记被拒绝", func(t *testing.T) {
		foreignNote := database.Note{UserID: 2, NotebookID: note.NotebookID, ContentRef: "ref-foreign", Title: "他人的"}
		require.NoError(t, db.Create(&foreignNote).Error)

		_, err := svc.UpdateFile(userID, created.ID, &UpdateFileRequest{NoteID: &foreignNote.ID})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestFileListAndDelete(t *testing.T) {
	svc, db := setupService(t)
	const userID = uint(1)

	note := createNote(t, db, userID)

	attached, err := svc.CreateFile(userID, &CreateFileRequest{
		StoragePath: "/blob/a", Filename: "a.txt", NoteID: &note.ID,
	})
	require.NoError(t, err)
	_, err = svc.CreateFile(userID, &CreateFileRequest{
		StoragePath: "/blob/b", Filename: "b.txt",
	})
	require.NoError(t, err)

	t.Run("按笔记过滤", func(t *testing.T) {
		files, err := svc.ListFiles(userID, &note.ID)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, attached.ID, files[0].ID)
	})

	t.Run("全量列表", func(t *testing.T) {
		files, err := svc.ListFiles(userID, nil)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("删除元数据记录", func(t *testing.T) {
		require.NoError(t, svc.DeleteFile(userID, attached.ID))

		_, err := svc.GetFile(userID, attached.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
