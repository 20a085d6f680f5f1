// Package database 提供数据库迁移和初始化功能
// 包含笔记组织系统相关表的创建和索引优化
package database

import (
	"gorm.io/gorm"

	"notedeck/internal/logger"
)

// Migrate 执行数据库迁移
// 参数: db *gorm.DB - GORM数据库连接实例
// 返回值: error - 迁移失败时返回错误信息
// 用途: 创建用户、组织层级、笔记、标签、任务和文件表，并建立必要的索引
func Migrate(db *gorm.DB) error {
	logger.Info("开始执行数据库迁移...")

	err := db.AutoMigrate(
		&User{},     // 用户表
		&Settings{}, // 用户设置表
		&Stack{},    // 笔记栈表
		&Notebook{}, // 笔记本表
		&Note{},     // 笔记主表
		&Tag{},      // 标签表
		&NoteTag{},  // 笔记标签关联表
		&Task{},     // 任务表
		&File{},     // 文件元数据表
	)
	if err != nil {
		return err
	}

	// 创建复合索引以优化查询性能
	if err := createIndexes(db); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建复合索引
// 用途: 优化层级查询、笔记列表过滤和日程冲突扫描的性能
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// 笔记本作用域查询优化：按笔记栈和排序字段查询笔记本
		"CREATE INDEX IF NOT EXISTS idx_notebooks_user_stack_sort ON notebooks(user_id, stack_id, sort_order)",
		// 笔记列表查询优化：按用户、笔记本和生命周期标志过滤
		"CREATE INDEX IF NOT EXISTS idx_notes_user_notebook ON notes(user_id, notebook_id, trashed)",
		"CREATE INDEX IF NOT EXISTS idx_notes_user_flags ON notes(user_id, pinned, archived, trashed)",
		// 日程冲突扫描优化：按用户和日期取出当天的时间段任务
		"CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, start_date)",
		// 任务排序查询优化
		"CREATE INDEX IF NOT EXISTS idx_tasks_note_sort ON tasks(note_id, sort_order)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.Errorf("创建索引失败: %s, 错误: %v", indexSQL, err)
			return err
		}
	}

	logger.Info("索引创建完成")
	return nil
}
