package database

import (
	"time"
)

// Stack 笔记栈模型
// 笔记栈是笔记本的顶层分组，一个笔记栈下可以有零或多个笔记本
type Stack struct {
	ID          uint      `gorm:"primarykey" json:"id"`                  // 主键ID，自增
	UserID      uint      `gorm:"not null;index" json:"user_id"`         // 所属用户ID
	Name        string    `gorm:"not null;size:100" json:"name"`         // 笔记栈名称，必填
	Description string    `gorm:"size:500" json:"description"`           // 描述，可选
	ColorID     *uint     `json:"color_id"`                              // 颜色标识，可选
	SortOrder   int       `gorm:"default:0" json:"sort_order"`           // 排序顺序，追加式分配
	CreatedAt   time.Time `json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                            // 最后修改时间

	// 关联关系
	Notebooks []Notebook `gorm:"foreignKey:StackID" json:"notebooks,omitempty"` // 一对多关联笔记本
}

// TableName 指定Stack模型对应的数据库表名
func (Stack) TableName() string {
	return "stacks"
}

// Notebook 笔记本模型
// 笔记本是笔记的直接容器，可以属于零或一个笔记栈
// 系统保证每条笔记都有所属笔记本，删除笔记本时子笔记会被重新归属而不是级联删除
type Notebook struct {
	ID          uint      `gorm:"primarykey" json:"id"`                  // 主键ID，自增
	UserID      uint      `gorm:"not null;index" json:"user_id"`         // 所属用户ID
	StackID     *uint     `gorm:"index" json:"stack_id"`                 // 所属笔记栈ID，可为空（未入栈）
	Name        string    `gorm:"not null;size:100" json:"name"`         // 笔记本名称，必填
	Description string    `gorm:"size:500" json:"description"`           // 描述，可选
	ColorID     *uint     `json:"color_id"`                              // 颜色标识，可选
	SortOrder   int       `gorm:"default:0" json:"sort_order"`           // 排序顺序，在所属作用域内追加式分配
	CreatedAt   time.Time `json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                            // 最后修改时间

	// 关联关系
	Notes []Note `gorm:"foreignKey:NotebookID" json:"notes,omitempty"` // 一对多关联笔记
}

// TableName 指定Notebook模型对应的数据库表名
func (Notebook) TableName() string {
	return "notebooks"
}

// DefaultNotebookName 默认笔记本名称
// 用户没有任何笔记本时自动创建的笔记本使用该名称
const DefaultNotebookName = "Untitled"
