package entity

import "time"

// MovingAverage 每小时刷新的简单均线快照，(coin, days, 日期)唯一
type MovingAverage struct {
	Id           int64     `gorm:"column:id;primary_key;" json:"id"`
	CoinSymbol   string    `gorm:"column:coin_symbol" json:"coin_symbol"`
	Days         int       `gorm:"column:days" json:"days"`
	Value        float64   `gorm:"column:value" json:"value"`
	CalculatedAt time.Time `gorm:"column:calculated_at" json:"calculated_at"`
}

func (MovingAverage) TableName() string {
	return "moving_averages"
}
