package model

import "cryptograph/internal/model/entity"

// StopOrder 引擎扫描时用到的挂单视图：订单本体加上通知需要的用户信息
type StopOrder struct {
	Tx          entity.Transaction `gorm:"embedded"`
	Email       string             `gorm:"column:email" json:"email"`
	Username    string             `gorm:"column:username" json:"username"`
	NotifyEmail bool               `gorm:"column:notify_email" json:"notify_email"`
}
