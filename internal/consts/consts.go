package consts

import "time"

const (
	// RequestId 请求id名称
	RequestId   = "request_id"
	UserID      = "user_id"
	JWTTokenCtx = "token_ctx"

	// redis缓存key前缀
	UserInfoPrefix    = "User_Info_list:"
	MarketPricePrefix = "Market_Price:"
	JwtBlackListKey   = "jwt_black_list:"

	// 默认redis过期时间
	RedisExrDefault = time.Hour * 24 * 5
	// 行情缓存时间，避免每个请求都打到交易所
	PriceCacheTTL = 10 * time.Second

	DateLayout = "2006-01-02"
	TimeLayout = "2006-01-02 15:04:05"
)

// 支持交易的币种
var SupportedCoins = []string{"BTC", "ETH", "XRP"}

// 均线周期（天）
var MovingAveragePeriods = []int{1, 2, 5, 9, 15}

func IsSupportedCoin(symbol string) bool {
	for _, c := range SupportedCoins {
		if c == symbol {
			return true
		}
	}
	return false
}
