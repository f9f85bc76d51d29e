package entity

import (
	"gorm.io/datatypes"
	"time"
)

// TradeLog 操作流水，只追加不修改
type TradeLog struct {
	Id            int64          `gorm:"column:id;primary_key;" json:"id"`
	UserId        int64          `gorm:"column:user_id" json:"user_id"`
	TransactionId int64          `gorm:"column:transaction_id" json:"transaction_id"`
	Action        string         `gorm:"column:action" json:"action"`
	Message       string         `gorm:"column:message" json:"message"`
	Details       datatypes.JSON `gorm:"column:details;type:json" json:"details"` // 触发类型、价格等附加信息
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (TradeLog) TableName() string {
	return "logs"
}
