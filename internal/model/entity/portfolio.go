package entity

// Portfolio 每个(user, coin)一行的持仓汇总。quantity归零时整行删除，
// 买入重算加权均价，卖出不动均价。
type Portfolio struct {
	Id         int64   `gorm:"column:id;primary_key;" json:"id"`
	UserId     int64   `gorm:"column:user_id" json:"user_id"`
	CoinSymbol string  `gorm:"column:coin_symbol" json:"coin_symbol"`
	Quantity   float64 `gorm:"column:quantity" json:"quantity"`
	AvgPrice   float64 `gorm:"column:avg_price" json:"avg_price"`
}

func (Portfolio) TableName() string {
	return "portfolio"
}
