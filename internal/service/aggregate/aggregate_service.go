// Package aggregate 提供读取时计算的派生统计视图
// 所有计数都在读取时通过批量GROUP BY查询得出，不在写路径维护冗余计数字段，
// 因此统计值永远等于子行的实际数量
package aggregate

import (
	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
)

// NoteCounts 单条笔记的关联统计
type NoteCounts struct {
	NoteID             uint  `json:"note_id"`              // 笔记ID
	TagCount           int64 `json:"tag_count"`            // 标签数量
	FileCount          int64 `json:"file_count"`           // 文件数量
	TaskCount          int64 `json:"task_count"`           // 任务总数
	CompletedTaskCount int64 `json:"completed_task_count"` // 已完成任务数
}

// NotebookView 笔记本统计视图
type NotebookView struct {
	database.Notebook
	NoteCount     int64 `json:"note_count"`     // 非回收站笔记数
	PinnedNotes   int64 `json:"pinned_notes"`   // 非回收站置顶笔记数
	ArchivedNotes int64 `json:"archived_notes"` // 非回收站归档笔记数
}

// StackView 笔记栈统计视图
type StackView struct {
	database.Stack
	NotebookCount int64 `json:"notebook_count"` // 子笔记本数
	TotalNotes    int64 `json:"total_notes"`    // 子笔记本下的非回收站笔记总数
}

// Service 统计服务接口
type Service interface {
	// NoteCounts 批量计算给定笔记的关联统计
	NoteCounts(noteIDs []uint) (map[uint]*NoteCounts, error)
	// NotebookViews 批量构造笔记本统计视图
	NotebookViews(notebooks []database.Notebook) ([]NotebookView, error)
	// StackViews 批量构造笔记栈统计视图
	StackViews(stacks []database.Stack) ([]StackView, error)
}

type aggregateService struct {
	db *gorm.DB
}

// NewService 创建统计服务实例
func NewService(db *gorm.DB) Service {
	return &aggregateService{db: db}
}

// NoteCounts 批量计算笔记的标签、文件、任务统计
// 三张关联表各跑一次GROUP BY查询，避免逐笔记的N+1查询
func (s *aggregateService) NoteCounts(noteIDs []uint) (map[uint]*NoteCounts, error) {
	result := make(map[uint]*NoteCounts, len(noteIDs))
	for _, id := range noteIDs {
		result[id] = &NoteCounts{NoteID: id}
	}
	if len(noteIDs) == 0 {
		return result, nil
	}

	type countRow struct {
		NoteID uint
		Total  int64
	}

	var tagRows []countRow
	err := s.db.Model(&database.NoteTag{}).
		Select("note_id, COUNT(*) AS total").
		Where("note_id IN ?", noteIDs).
		Group("note_id").
		Scan(&tagRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, row := range tagRows {
		result[row.NoteID].TagCount = row.Total
	}

	var fileRows []countRow
	err = s.db.Model(&database.File{}).
		Select("note_id, COUNT(*) AS total").
		Where("note_id IN ?", noteIDs).
		Group("note_id").
		Scan(&fileRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, row := range fileRows {
		result[row.NoteID].FileCount = row.Total
	}

	type taskRow struct {
		NoteID    uint
		Total     int64
		Completed int64
	}
	var taskRows []taskRow
	err = s.db.Model(&database.Task{}).
		Select("note_id, COUNT(*) AS total, SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed").
		Where("note_id IN ?", noteIDs).
		Group("note_id").
		Scan(&taskRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, row := range taskRows {
		result[row.NoteID].TaskCount = row.Total
		result[row.NoteID].CompletedTaskCount = row.Completed
	}

	return result, nil
}

// NotebookViews 批量构造笔记本统计视图
// 统计口径：回收站笔记不计入任何计数
func (s *aggregateService) NotebookViews(notebooks []database.Notebook) ([]NotebookView, error) {
	views := make([]NotebookView, 0, len(notebooks))
	if len(notebooks) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(notebooks))
	for _, nb := range notebooks {
		ids = append(ids, nb.ID)
	}

	type noteRow struct {
		NotebookID uint
		Total      int64
		Pinned     int64
		Archived   int64
	}
	var rows []noteRow
	err := s.db.Model(&database.Note{}).
		Select("notebook_id, COUNT(*) AS total, "+
			"SUM(CASE WHEN pinned THEN 1 ELSE 0 END) AS pinned, "+
			"SUM(CASE WHEN archived THEN 1 ELSE 0 END) AS archived").
		Where("notebook_id IN ? AND trashed = ?", ids, false).
		Group("notebook_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	counts := make(map[uint]noteRow, len(rows))
	for _, row := range rows {
		counts[row.NotebookID] = row
	}

	for _, nb := range notebooks {
		view := NotebookView{Notebook: nb}
		if row, ok := counts[nb.ID]; ok {
			view.NoteCount = row.Total
			view.PinnedNotes = row.Pinned
			view.ArchivedNotes = row.Archived
		}
		views = append(views, view)
	}
	return views, nil
}

// StackViews 批量构造笔记栈统计视图
func (s *aggregateService) StackViews(stacks []database.Stack) ([]StackView, error) {
	views := make([]StackView, 0, len(stacks))
	if len(stacks) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(stacks))
	for _, st := range stacks {
		ids = append(ids, st.ID)
	}

	type notebookRow struct {
		StackID uint
		Total   int64
	}
	var nbRows []notebookRow
	err := s.db.Model(&database.Notebook{}).
		Select("stack_id, COUNT(*) AS total").
		Where("stack_id IN ?", ids).
		Group("stack_id").
		Scan(&nbRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	notebookCounts := make(map[uint]int64, len(nbRows))
	for _, row := range nbRows {
		notebookCounts[row.StackID] = row.Total
	}

	type noteRow struct {
		StackID uint
		Total   int64
	}
	var noteRows []noteRow
	err = s.db.Model(&database.Note{}).
		Select("notebooks.stack_id AS stack_id, COUNT(*) AS total").
		Joins("JOIN notebooks ON notebooks.id = notes.notebook_id").
		Where("notebooks.stack_id IN ? AND notes.trashed = ?", ids, false).
		Group("notebooks.stack_id").
		Scan(&noteRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	noteCounts := make(map[uint]int64, len(noteRows))
	for _, row := range noteRows {
		noteCounts[row.StackID] = row.Total
	}

	for _, st := range stacks {
		views = append(views, StackView{
			Stack:         st,
			NotebookCount: notebookCounts[st.ID],
			TotalNotes:    noteCounts[st.ID],
		})
	}
	return views, nil
}
