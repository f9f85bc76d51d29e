package entity

import "time"

type TradeSide string

const (
	// 买入
	TradeBuy TradeSide = "buy"
	// 卖出
	TradeSell TradeSide = "sell"
)

type TradeStatus string

const (
	// 持仓中
	TradeOpen TradeStatus = "open"
	// 已平仓，open -> closed 只发生一次
	TradeClosed TradeStatus = "closed"
)

// Transaction 一笔买入或卖出记录。买单可以带止损价或者移动止损百分比，
// 由引擎在后台轮询触发平仓。
type Transaction struct {
	Id                 int64       `gorm:"column:id;primary_key;" json:"id"`
	UserId             int64       `gorm:"column:user_id" json:"user_id"`
	CoinSymbol         string      `gorm:"column:coin_symbol" json:"coin_symbol"`
	Type               TradeSide   `gorm:"column:type" json:"type"`
	Quantity           float64     `gorm:"column:quantity" json:"quantity"`
	PriceAtTransaction float64     `gorm:"column:price_at_transaction" json:"price_at_transaction"`
	StopLimit          *float64    `gorm:"column:stop_limit" json:"stop_limit"`                 // 止损价，可空
	TrailingStopPct    *float64    `gorm:"column:trailing_stop_pct" json:"trailing_stop_pct"`   // 移动止损百分比，可空
	Status             TradeStatus `gorm:"column:status;default:open" json:"status"`
	CreatedAt          time.Time   `gorm:"column:created_at" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// HasStopOrder 是否挂了自动止损
func (t *Transaction) HasStopOrder() bool {
	return t.StopLimit != nil || t.TrailingStopPct != nil
}
