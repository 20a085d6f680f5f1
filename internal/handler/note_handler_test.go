// 笔记处理器的单元测试
// 覆盖创建响应的聚合视图结构和列表接口的分页信封
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"notedeck/internal/contentstore"
	"notedeck/internal/database"
	"notedeck/internal/service/aggregate"
	"notedeck/internal/service/note"
	"notedeck/internal/service/organization"
)

// setupNoteRoutes 构造带桩身份中间件的笔记路由
func setupNoteRoutes(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := contentstore.NewMemoryStore()
	orgService := organization.NewService(db)
	noteService := note.NewService(db, store, orgService)
	h := NewNoteHandler(noteService, aggregate.NewService(db))

	engine := gin.New()
	engine.Use(func(c *gin.Context) { c.Set("user_id", uint(1)) })
	engine.POST("/notes", h.CreateNote)
	engine.GET("/notes", h.ListNotes)
	return engine, db
}

func TestCreateNoteReturnsAggregatedView(t *testing.T) {
	engine, _ := setupNoteRoutes(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notes",
		strings.NewReader(`{"title":"新笔记","content":"初始正文"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID      uint   `json:"id"`
			Title   string `json:"title"`
			Content string `json:"content"`
			Version int    `json:"version"`
			Counts  *struct {
				NoteID             uint  `json:"note_id"`
				TagCount           int64 `json:"tag_count"`
				FileCount          int64 `json:"file_count"`
				TaskCount          int64 `json:"task_count"`
				CompletedTaskCount int64 `json:"completed_task_count"`
			} `json:"counts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.NotZero(t, envelope.Data.ID)
	assert.Equal(t, "新笔记", envelope.Data.Title)
	assert.Equal(t, "初始正文", envelope.Data.Content)
	assert.Equal(t, 1, envelope.Data.Version)

	// 新建笔记的统计视图存在且全为零
	require.NotNil(t, envelope.Data.Counts)
	assert.Equal(t, envelope.Data.ID, envelope.Data.Counts.NoteID)
	assert.Zero(t, envelope.Data.Counts.TagCount)
	assert.Zero(t, envelope.Data.Counts.FileCount)
	assert.Zero(t, envelope.Data.Counts.TaskCount)
	assert.Zero(t, envelope.Data.Counts.CompletedTaskCount)
}

func TestListNotesPagedEnvelope(t *testing.T) {
	engine, _ := setupNoteRoutes(t)

	for i := 1; i <= 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notes",
			strings.NewReader(fmt.Sprintf(`{"title":"笔记%d"}`, i)))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	type pagedEnvelope struct {
		Success bool `json:"success"`
		Data    struct {
			Data       []json.RawMessage `json:"data"`
			Total      int64             `json:"total"`
			Page       int               `json:"page"`
			PageSize   int               `json:"page_size"`
			TotalPages int64             `json:"total_pages"`
		} `json:"data"`
	}

	t.Run("传page参数时返回分页结构", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notes?page=1&page_size=2", nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var envelope pagedEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.True(t, envelope.Success)
		assert.Len(t, envelope.Data.Data, 2)
		assert.Equal(t, int64(5), envelope.Data.Total)
		assert.Equal(t, 1, envelope.Data.Page)
		assert.Equal(t, 2, envelope.Data.PageSize)
		assert.Equal(t, int64(3), envelope.Data.TotalPages)
	})

	t.Run("不传page时保持扁平列表", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var envelope struct {
			Success bool              `json:"success"`
			Data    []json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.True(t, envelope.Success)
		assert.Len(t, envelope.Data, 5)
	})

	t.Run("非法page参数返回400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notes?page=0", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
