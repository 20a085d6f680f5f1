package database

import (
	"time"
)

// Note 笔记模型
// 笔记的元数据（归属、生命周期标志、版本信息）存储在关系型数据库中
// 笔记正文存放在独立的文档存储里，通过content_ref关联
// content_ref在创建时分配一次，此后永不变更
type Note struct {
	ID           uint      `gorm:"primarykey" json:"id"`                              // 主键ID，自增
	UserID       uint      `gorm:"not null;index" json:"user_id"`                     // 所属用户ID
	NotebookID   uint      `gorm:"not null;index" json:"notebook_id"`                 // 所属笔记本ID，永不为空
	ContentRef   string    `gorm:"uniqueIndex;not null;size:36" json:"content_ref"`   // 内容文档存储的不透明键（UUID格式）
	Title        string    `gorm:"not null;size:200" json:"title"`                    // 笔记标题，必填
	Pinned       bool      `gorm:"default:false" json:"pinned"`                       // 是否置顶
	Archived     bool      `gorm:"default:false" json:"archived"`                     // 是否归档
	Trashed      bool      `gorm:"default:false" json:"trashed"`                      // 是否在回收站
	Version      int       `gorm:"default:1" json:"version"`                          // 内容版本号，仅内容保存时递增
	Synced       bool      `gorm:"default:false" json:"synced"`                       // 内容是否已同步到文档存储
	CreatedAt    time.Time `json:"created_at"`                                        // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                        // 最后修改时间
	LastModified time.Time `json:"last_modified"`                                     // 业务上的最后变更时间，每次状态流转更新

	// 关联关系
	Tags  []Tag  `gorm:"many2many:note_tags;" json:"tags,omitempty"` // 多对多关联标签
	Tasks []Task `gorm:"foreignKey:NoteID" json:"tasks,omitempty"`   // 一对多关联任务
	Files []File `gorm:"foreignKey:NoteID" json:"files,omitempty"`   // 一对多关联文件
}

// TableName 指定Note模型对应的数据库表名
func (Note) TableName() string {
	return "notes"
}

// Tag 标签模型
// 标签名称在同一用户内唯一，通过关联表与笔记建立多对多关系
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                         // 主键ID，自增
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"user_id"`       // 所属用户ID
	Name      string    `gorm:"not null;size:50;uniqueIndex:idx_tags_user_name" json:"name"`  // 标签名称，用户内唯一
	ColorID   *uint     `json:"color_id"`                                                     // 颜色标识，可选
	CreatedAt time.Time `json:"created_at"`                                                   // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                   // 最后修改时间
}

// TableName 指定Tag模型对应的数据库表名
func (Tag) TableName() string {
	return "tags"
}

// NoteTag 笔记标签关联模型
// 管理笔记与标签之间的多对多关系
type NoteTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                            // 主键ID，自增
	NoteID    uint      `gorm:"not null;uniqueIndex:idx_note_tags_pair" json:"note_id"`          // 笔记ID，外键
	TagID     uint      `gorm:"not null;uniqueIndex:idx_note_tags_pair;index" json:"tag_id"`     // 标签ID，外键
	CreatedAt time.Time `json:"created_at"`                                                      // 关联创建时间
}

// TableName 指定NoteTag模型对应的数据库表名
func (NoteTag) TableName() string {
	return "note_tags"
}
