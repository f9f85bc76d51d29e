package model

import "time"

// PriceQuote 某个币的最新报价
type PriceQuote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// Candlestick 单根K线
type Candlestick struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Symbol string    `json:"symbol"`
}

// PricePoint 日线收盘价
type PricePoint struct {
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Symbol string    `json:"symbol"`
}

// MovingAveragesRes 当前均线值，key是周期天数
type MovingAveragesRes struct {
	Symbol         string           `json:"symbol"`
	MovingAverages map[int]*float64 `json:"moving_averages"` // 数据不足时为null
	LastUpdated    time.Time        `json:"last_updated"`
}

// MAPoint 历史均线序列中的一个点，用于图表叠加
type MAPoint struct {
	Date           time.Time        `json:"date"`
	Close          float64          `json:"close"`
	MovingAverages map[int]*float64 `json:"moving_averages"`
}
