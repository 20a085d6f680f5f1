package database

import (
	"time"
)

// Task 任务模型
// 带时间段的待办事项，可以挂在某条笔记下，也可以独立存在
// user_id始终填写：挂接笔记时取笔记所有者，独立任务取创建者
// 这样独立任务同样参与所有权校验和日程冲突检测
type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`               // 主键ID，自增
	UserID      uint       `gorm:"not null;index" json:"user_id"`      // 所属用户ID
	NoteID      *uint      `gorm:"index" json:"note_id"`               // 所属笔记ID，可为空（独立任务）
	Label       string     `gorm:"not null;size:200" json:"label"`     // 任务名称，必填
	Description string     `gorm:"size:500" json:"description"`        // 任务描述，可选
	StartDate   *string    `gorm:"size:10;index" json:"start_date"`    // 日期，YYYY-MM-DD格式，可为空
	StartTime   *string    `gorm:"size:8" json:"start_time"`           // 开始时间，HH:MM[:SS]格式，可为空
	EndTime     *string    `gorm:"size:8" json:"end_time"`             // 结束时间，HH:MM[:SS]格式，可为空
	Reminder    *time.Time `json:"reminder"`                           // 提醒时间，可为空
	AssignedTo  *string    `gorm:"size:100" json:"assigned_to"`        // 指派对象，可为空
	Priority    *string    `gorm:"size:20" json:"priority"`            // 优先级，可为空
	Flagged     bool       `gorm:"default:false" json:"flagged"`       // 是否标旗
	Completed   bool       `gorm:"default:false" json:"completed"`     // 是否完成
	SortOrder   int        `gorm:"default:0" json:"sort_order"`        // 排序顺序，在所属笔记作用域内追加式分配
	CreatedAt   time.Time  `json:"created_at"`                         // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                         // 最后修改时间
}

// TableName 指定Task模型对应的数据库表名
func (Task) TableName() string {
	return "tasks"
}
