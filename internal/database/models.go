// Package database 定义了数据库相关的模型和结构体
// 具体的模型定义拆分到以下文件：
// - models.go: 用户相关模型（User, Settings）
// - org_models.go: 组织层级模型（Stack, Notebook）
// - note_models.go: 笔记相关模型（Note, Tag, NoteTag）
// - task_models.go: 任务模型（Task）
// - file_models.go: 文件模型（File）
package database

import (
	"time"
)

// User 用户模型
// 用户是所有其他实体的所有者，由外部认证服务签发的标识关联
type User struct {
	ID         uint      `gorm:"primarykey" json:"id"`                           // 主键ID，自增
	ExternalID string    `gorm:"uniqueIndex;not null;size:64" json:"external_id"` // 外部认证系统的用户标识
	Name       string    `gorm:"size:100" json:"name"`                           // 用户名称
	CreatedAt  time.Time `json:"created_at"`                                     // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                     // 最后修改时间
}

// TableName 指定User模型对应的数据库表名
func (User) TableName() string {
	return "users"
}

// Settings 用户设置模型
// 每个用户恰好拥有一条设置记录，首次访问时惰性创建
type Settings struct {
	ID          uint      `gorm:"primarykey" json:"id"`                              // 主键ID，自增
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`               // 所属用户ID
	DefaultView string    `gorm:"size:20;default:'notes'" json:"default_view"`       // 默认视图（notes、tasks）
	Language    string    `gorm:"size:10;default:'zh-CN'" json:"language"`           // 界面语言
	Timezone    string    `gorm:"size:64;default:'Asia/Shanghai'" json:"timezone"`   // 时区
	CreatedAt   time.Time `json:"created_at"`                                        // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                        // 最后修改时间
}

// TableName 指定Settings模型对应的数据库表名
func (Settings) TableName() string {
	return "settings"
}
