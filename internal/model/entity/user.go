package entity

import (
	"gorm.io/plugin/soft_delete"
	"time"
)

type User struct {
	Id           int64                 `gorm:"column:id;primary_key;" json:"id"`
	Username     string                `gorm:"column:username;not null;unique" json:"username"` // unique 用户名唯一且不能为空
	Email        string                `gorm:"column:email;unique" json:"email"`                // unique 邮箱号唯一
	PasswordHash string                `gorm:"column:password_hash" json:"-"`
	CreatedAt    time.Time             `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time             `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt    time.Time             `gorm:"column:deleted_at" json:"deleted_at"`
	IsDel        soft_delete.DeletedAt `gorm:"softDelete:flag,DeletedAtField:DeletedAt" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Setting 用户偏好，目前只有邮件通知开关
type Setting struct {
	Id          int64     `gorm:"column:id;primary_key;" json:"id"`
	UserId      int64     `gorm:"column:user_id;unique" json:"user_id"`
	NotifyEmail bool      `gorm:"column:notify_email;default:true" json:"notify_email"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Setting) TableName() string {
	return "settings"
}
