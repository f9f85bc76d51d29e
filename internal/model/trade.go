package model

import (
	"cryptograph/internal/model/entity"
)

// TransactionCreateReq 下单请求
type TransactionCreateReq struct {
	CoinSymbol         string   `json:"coin_symbol" binding:"required"`
	Type               string   `json:"type" binding:"required,oneof=buy sell"`
	Quantity           float64  `json:"quantity" binding:"required,gt=0"`
	PriceAtTransaction float64  `json:"price_at_transaction" binding:"required,gt=0"`
	StopLimit          *float64 `json:"stop_limit" binding:"omitempty,gte=0"`
	TrailingStopPct    *float64 `json:"trailing_stop_pct" binding:"omitempty,gte=0,lte=100"`
}

// TransactionListReq 交易记录查询
type TransactionListReq struct {
	Status     string `form:"status"`
	CoinSymbol string `form:"coin_symbol"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// TransactionRes 带已实现金额的交易记录
type TransactionRes struct {
	entity.Transaction
	TransactionValue float64 `json:"transaction_value"` // 买为负、卖为正的现金流
}

// PortfolioItemRes 持仓行，叠加实时行情
type PortfolioItemRes struct {
	entity.Portfolio
	CurrentPrice float64 `json:"current_price"`
	CurrentValue float64 `json:"current_value"`
	UnrealizedPL float64 `json:"unrealized_pl"`
}

// TradingStatsRes 交易统计
type TradingStatsRes struct {
	TotalTransactions  int64   `json:"total_transactions"`
	BuyTransactions    int64   `json:"buy_transactions"`
	SellTransactions   int64   `json:"sell_transactions"`
	OpenTransactions   int64   `json:"open_transactions"`
	ClosedTransactions int64   `json:"closed_transactions"`
	TotalBought        float64 `json:"total_bought"`
	TotalSold          float64 `json:"total_sold"`
}
