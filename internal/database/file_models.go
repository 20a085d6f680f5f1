// Package database 定义了文件相关的数据库模型
package database

import (
	"time"
)

// File 文件元数据模型
// 只记录文件的元数据，文件内容由外部对象存储服务保管
// 文件可以不挂接任何笔记（note_id为空）；删除笔记时文件被解除挂接而非删除
type File struct {
	ID          uint      `gorm:"primarykey" json:"id"`                   // 主键ID，自增
	UserID      uint      `gorm:"not null;index" json:"user_id"`          // 所属用户ID
	NoteID      *uint     `gorm:"index" json:"note_id"`                   // 所属笔记ID，可为空（未挂接）
	StoragePath string    `gorm:"not null;size:500" json:"storage_path"`  // 文件在对象存储中的完整路径
	Filename    string    `gorm:"not null;size:255" json:"filename"`      // 原始文件名称，最大255字符
	MimeType    string    `gorm:"size:100" json:"mime_type"`              // 文件MIME类型
	Size        int64     `gorm:"not null;default:0" json:"size"`         // 文件大小，单位为字节
	Description string    `gorm:"size:500" json:"description"`            // 文件描述，可选
	CreatedAt   time.Time `json:"created_at"`                             // 记录创建时间
	UpdatedAt   time.Time `json:"updated_at"`                             // 记录最后更新时间
}

// TableName 指定File模型对应的数据库表名
func (File) TableName() string {
	return "files"
}
