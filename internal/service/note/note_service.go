// Package note 提供笔记的生命周期管理服务
// 笔记元数据存于关系库，正文存于内容文档存储，二者之间没有分布式事务：
// 元数据写入成功即视为操作成功，文档侧写入失败只记录日志，
// 读取时文档缺失按空内容处理
package note

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notedeck/internal/contentstore"
	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/logger"
	"notedeck/internal/service/organization"
	"notedeck/internal/service/ownership"
)

// CreateNoteRequest 创建笔记请求
type CreateNoteRequest struct {
	Title      string `json:"title" binding:"required,max=200"` // 笔记标题，必填
	Content    string `json:"content"`                          // 初始正文，可选
	NotebookID *uint  `json:"notebook_id"`                      // 所属笔记本ID，可选，缺省时自动解析
}

// UpdateNoteRequest 更新笔记元数据请求，仅更新非空字段
// 元数据更新不触碰version和synced，这两个字段只在内容保存时变化
type UpdateNoteRequest struct {
	Title      *string `json:"title" binding:"omitempty,max=200"` // 新标题
	NotebookID *uint   `json:"notebook_id"`                       // 移动到的笔记本ID
}

// SaveContentRequest 保存笔记内容请求
type SaveContentRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=200"` // 同步更新的标题，可选
	Content string  `json:"content"`                           // 笔记正文
}

// ListNotesFilter 笔记列表过滤条件
type ListNotesFilter struct {
	NotebookID *uint // 按笔记本过滤
	Pinned     *bool // 按置顶状态过滤
	Archived   *bool // 按归档状态过滤
	Trashed    *bool // 按回收站状态过滤，缺省时排除回收站笔记
}

// NoteView 笔记详情视图，元数据加上文档存储中的正文
type NoteView struct {
	database.Note
	Content string `json:"content"` // 笔记正文，文档缺失时为空字符串
}

// Service 笔记服务接口
type Service interface {
	// CreateNote 创建笔记
	CreateNote(ctx context.Context, userID uint, req *CreateNoteRequest) (*database.Note, error)
	// GetNote 获取笔记详情（含正文）
	GetNote(ctx context.Context, userID, noteID uint) (*NoteView, error)
	// ListNotes 获取笔记列表
	ListNotes(userID uint, filter *ListNotesFilter) ([]database.Note, error)
	// ListNotesPaged 分页获取笔记列表，返回满足过滤条件的总数
	ListNotesPaged(userID uint, filter *ListNotesFilter, page, pageSize int) ([]database.Note, int64, error)
	// UpdateNote 更新笔记元数据
	UpdateNote(ctx context.Context, userID, noteID uint, req *UpdateNoteRequest) (*database.Note, error)
	// SaveContent 保存笔记正文，版本号递增并标记为已同步
	SaveContent(ctx context.Context, userID, noteID uint, req *SaveContentRequest) (*database.Note, error)
	// Pin 置顶笔记
	Pin(userID, noteID uint) (*database.Note, error)
	// Unpin 取消置顶
	Unpin(userID, noteID uint) (*database.Note, error)
	// Archive 归档笔记，同时清除置顶
	Archive(userID, noteID uint) (*database.Note, error)
	// Unarchive 取消归档
	Unarchive(userID, noteID uint) (*database.Note, error)
	// Trash 把笔记移入回收站，同时清除置顶和归档
	Trash(ctx context.Context, userID, noteID uint) (*database.Note, error)
	// Restore 从回收站恢复，无条件回到活动状态
	Restore(ctx context.Context, userID, noteID uint) (*database.Note, error)
	// DeleteNote 永久删除笔记及其任务和标签关联，文件仅解除挂接
	DeleteNote(ctx context.Context, userID, noteID uint) error
	// SearchNotes 按标题子串搜索非回收站笔记
	SearchNotes(userID uint, keyword string) ([]database.Note, error)
}

type noteService struct {
	db      *gorm.DB
	store   contentstore.ContentStore
	org     organization.Service
	checker *ownership.Checker
}

// NewService 创建笔记服务实例
func NewService(db *gorm.DB, store contentstore.ContentStore, org organization.Service) Service {
	return &noteService{
		db:      db,
		store:   store,
		org:     org,
		checker: ownership.NewChecker(db),
	}
}

// CreateNote 创建笔记
// 流程：校验标题 → 解析所属笔记本 → 事务内写入元数据行 → 初始化内容文档
// 内容文档初始化失败不回滚元数据，笔记保持synced=false等待下次保存
func (s *noteService) CreateNote(ctx context.Context, userID uint, req *CreateNoteRequest) (*database.Note, error) {
	if req.Title == "" {
		return nil, apperrors.New(apperrors.ErrNoteTitleMissing)
	}

	now := time.Now()
	note := &database.Note{
		UserID:       userID,
		ContentRef:   uuid.New().String(),
		Title:        req.Title,
		Version:      1,
		LastModified: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		notebook, err := s.org.ResolveNotebook(tx, userID, req.NotebookID)
		if err != nil {
			return err
		}
		note.NotebookID = notebook.ID

		if err := tx.Create(note).Error; err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.GetAppError(err); ok {
			return nil, err
		}
		logger.Errorf("Failed to create note for user %d: %v", userID, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// 元数据已落库，文档初始化是尽力而为
	doc := contentstore.NoteDocument{
		Title:      note.Title,
		Content:    req.Content,
		UserID:     userID,
		NotebookID: note.NotebookID,
	}
	if err := s.store.Init(ctx, note.ContentRef, doc); err != nil {
		logger.Warnf("Failed to init content document for note %d (ref=%s): %v", note.ID, note.ContentRef, err)
	} else {
		s.db.Model(note).Update("synced", true)
		note.Synced = true
	}

	logger.Infof("Note created: id=%d user=%d ref=%s", note.ID, userID, note.ContentRef)
	return note, nil
}

// GetNote 获取笔记详情
// 内容文档不存在时按空正文返回，不报错
func (s *noteService) GetNote(ctx context.Context, userID, noteID uint) (*NoteView, error) {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return nil, err
	}

	view := &NoteView{Note: *note}
	doc, err := s.store.Get(ctx, note.ContentRef)
	switch {
	case err == nil:
		view.Content = doc.Content
	case err == contentstore.ErrDocumentNotFound:
		view.Content = ""
	default:
		logger.Warnf("Failed to load content document for note %d: %v", noteID, err)
		view.Content = ""
	}
	return view, nil
}

// listQuery 构造带过滤条件的笔记列表查询
// 未指定trashed过滤时默认排除回收站笔记
func (s *noteService) listQuery(userID uint, filter *ListNotesFilter) *gorm.DB {
	query := s.db.Model(&database.Note{}).Where("user_id = ?", userID)
	if filter != nil {
		if filter.NotebookID != nil {
			query = query.Where("notebook_id = ?", *filter.NotebookID)
		}
		if filter.Pinned != nil {
			query = query.Where("pinned = ?", *filter.Pinned)
		}
		if filter.Archived != nil {
			query = query.Where("archived = ?", *filter.Archived)
		}
		if filter.Trashed != nil {
			query = query.Where("trashed = ?", *filter.Trashed)
		} else {
			query = query.Where("trashed = ?", false)
		}
	} else {
		query = query.Where("trashed = ?", false)
	}
	return query
}

// ListNotes 获取笔记列表，置顶笔记排在前面
func (s *noteService) ListNotes(userID uint, filter *ListNotesFilter) ([]database.Note, error) {
	var notes []database.Note
	err := s.listQuery(userID, filter).Order("pinned DESC, last_modified DESC").Find(&notes).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notes, nil
}

// ListNotesPaged 分页获取笔记列表
// 排序与ListNotes一致；page从1开始，pageSize非法时取默认值20、上限100
func (s *noteService) ListNotesPaged(userID uint, filter *ListNotesFilter, page, pageSize int) ([]database.Note, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var total int64
	if err := s.listQuery(userID, filter).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notes []database.Note
	err := s.listQuery(userID, filter).
		Order("pinned DESC, last_modified DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notes).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notes, total, nil
}

// UpdateNote 更新笔记元数据
// 只改标题和所属笔记本，version和synced保持不变
func (s *noteService) UpdateNote(ctx context.Context, userID, noteID uint, req *UpdateNoteRequest) (*database.Note, error) {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	var docUpdate contentstore.DocumentUpdate

	if req.Title != nil {
		if *req.Title == "" {
			return nil, apperrors.New(apperrors.ErrNoteTitleMissing)
		}
		updates["title"] = *req.Title
		docUpdate.Title = req.Title
	}
	if req.NotebookID != nil {
		notebook, err := s.checker.Notebook(userID, *req.NotebookID)
		if err != nil {
			return nil, err
		}
		updates["notebook_id"] = notebook.ID
		docUpdate.NotebookID = &notebook.ID
	}

	if len(updates) == 0 {
		return note, nil
	}
	updates["last_modified"] = time.Now()

	if err := s.db.Model(note).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// 文档侧同步是尽力而为
	if err := s.store.Save(ctx, note.ContentRef, docUpdate); err != nil {
		logger.Warnf("Failed to sync content document for note %d: %v", noteID, err)
	}
	return s.checker.Note(userID, noteID)
}

// SaveContent 保存笔记正文
// 文档合并写入成功后，元数据行版本号加一并标记synced=true
// 这是唯一会递增版本号的操作
func (s *noteService) SaveContent(ctx context.Context, userID, noteID uint, req *SaveContentRequest) (*database.Note, error) {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return nil, err
	}

	docUpdate := contentstore.DocumentUpdate{Content: &req.Content}
	if req.Title != nil && *req.Title != "" {
		docUpdate.Title = req.Title
	}
	if err := s.store.Save(ctx, note.ContentRef, docUpdate); err != nil {
		logger.Errorf("Failed to save content for note %d (ref=%s): %v", noteID, note.ContentRef, err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"version":       gorm.Expr("version + 1"),
		"synced":        true,
		"last_modified": now,
	}
	if docUpdate.Title != nil {
		updates["title"] = *docUpdate.Title
	}
	if err := s.db.Model(note).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// 重新读取，拿到递增后的版本号
	return s.checker.Note(userID, noteID)
}

// Pin 置顶笔记
func (s *noteService) Pin(userID, noteID uint) (*database.Note, error) {
	return s.transition(userID, noteID, map[string]interface{}{
		"pinned": true,
	})
}

// Unpin 取消置顶
func (s *noteService) Unpin(userID, noteID uint) (*database.Note, error) {
	return s.transition(userID, noteID, map[string]interface{}{
		"pinned": false,
	})
}

// Archive 归档笔记，置顶状态随之清除
func (s *noteService) Archive(userID, noteID uint) (*database.Note, error) {
	return s.transition(userID, noteID, map[string]interface{}{
		"archived": true,
		"pinned":   false,
	})
}

// Unarchive 取消归档
func (s *noteService) Unarchive(userID, noteID uint) (*database.Note, error) {
	return s.transition(userID, noteID, map[string]interface{}{
		"archived": false,
	})
}

// Trash 把笔记移入回收站，置顶和归档状态随之清除
// 文档侧的is_trashed标记尽力同步
func (s *noteService) Trash(ctx context.Context, userID, noteID uint) (*database.Note, error) {
	note, err := s.transition(userID, noteID, map[string]interface{}{
		"trashed":  true,
		"pinned":   false,
		"archived": false,
	})
	if err != nil {
		return nil, err
	}
	s.syncTrashedFlag(ctx, note, true)
	return note, nil
}

// Restore 从回收站恢复
// 无条件回到活动状态：恢复前的归档状态不保留
func (s *noteService) Restore(ctx context.Context, userID, noteID uint) (*database.Note, error) {
	note, err := s.transition(userID, noteID, map[string]interface{}{
		"trashed":  false,
		"pinned":   false,
		"archived": false,
	})
	if err != nil {
		return nil, err
	}
	s.syncTrashedFlag(ctx, note, false)
	return note, nil
}

// transition 执行状态流转并刷新last_modified
func (s *noteService) transition(userID, noteID uint, updates map[string]interface{}) (*database.Note, error) {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return nil, err
	}

	updates["last_modified"] = time.Now()
	if err := s.db.Model(note).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.checker.Note(userID, noteID)
}

// syncTrashedFlag 尽力同步文档侧的回收站标记
func (s *noteService) syncTrashedFlag(ctx context.Context, note *database.Note, trashed bool) {
	update := contentstore.DocumentUpdate{IsTrashed: &trashed}
	if err := s.store.Save(ctx, note.ContentRef, update); err != nil {
		logger.Warnf("Failed to sync trashed flag for note %d: %v", note.ID, err)
	}
}

// DeleteNote 永久删除笔记
// 事务内删除笔记行、其任务和标签关联；文件记录保留但解除挂接
// 内容文档在事务提交后尽力删除
func (s *noteService) DeleteNote(ctx context.Context, userID, noteID uint) error {
	note, err := s.checker.Note(userID, noteID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", note.ID).Delete(&database.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete note tasks: %w", err)
		}
		if err := tx.Where("note_id = ?", note.ID).Delete(&database.NoteTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete note tag links: %w", err)
		}
		if err := tx.Model(&database.File{}).
			Where("note_id = ?", note.ID).
			Update("note_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach note files: %w", err)
		}
		if err := tx.Delete(note).Error; err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Failed to delete note %d: %v", noteID, err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.store.Delete(ctx, note.ContentRef); err != nil {
		logger.Warnf("Failed to delete content document for note %d (ref=%s): %v", noteID, note.ContentRef, err)
	}

	logger.Infof("Note deleted: id=%d user=%d", noteID, userID)
	return nil
}

// SearchNotes 按标题子串搜索，只返回非回收站笔记
func (s *noteService) SearchNotes(userID uint, keyword string) ([]database.Note, error) {
	var notes []database.Note
	err := s.db.Where("user_id = ? AND trashed = ? AND title LIKE ?", userID, false, "%"+keyword+"%").
		Order("pinned DESC, last_modified DESC").
		Find(&notes).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notes, nil
}
