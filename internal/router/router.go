package router

import (
	"github.com/gin-gonic/gin"

	"cryptograph/internal/handler/market"
	"cryptograph/internal/handler/ping"
	"cryptograph/internal/handler/ticker"
	"cryptograph/internal/handler/trade"
	"cryptograph/internal/handler/user"
	"cryptograph/internal/middleware"
)

type ApiRouter struct {
	marketHandler *market.MarketHandler
	tradeHandler  *trade.TradeHandler
	userHandler   *user.UserHandler
	tickerHandler *ticker.Handler
}

func NewApiRouter(mh *market.MarketHandler, th *trade.TradeHandler, uh *user.UserHandler, tk *ticker.Handler) *ApiRouter {
	return &ApiRouter{marketHandler: mh, tradeHandler: th, userHandler: uh, tickerHandler: tk}
}

func (api *ApiRouter) Load(g *gin.Engine) {
	g.Use(gin.Recovery())
	g.Use(middleware.RequestId())
	g.Use(middleware.Logger)
	g.Use(middleware.NoCache())
	g.Use(middleware.Options())
	g.Use(middleware.Secure())

	g.GET("/ping", ping.Ping())

	base := g.Group("/api/v1")

	m := base.Group("/market")
	{
		m.GET("/prices", api.marketHandler.PricesGet())
		m.GET("/prices/:coin", api.marketHandler.PriceGet())
		m.GET("/candlesticks/:coin", api.marketHandler.CandlesticksGet())
		m.GET("/historical/:coin", api.marketHandler.HistoricalGet())
		m.GET("/moving-averages", api.marketHandler.MovingAveragesGetAll())
		m.GET("/moving-averages/:coin", api.marketHandler.MovingAveragesGet())
		m.GET("/moving-averages/:coin/history", api.marketHandler.MovingAveragesHistoryGet())
	}

	tk := base.Group("/ticker")
	{
		tk.GET("/ws", api.tickerHandler.ServeWS) // 通过websocket连接获取价格
	}

	t := base.Group("/trade", middleware.AuthToken())
	{
		t.POST("/transactions", middleware.AntiDuplicateMiddleware(), api.tradeHandler.TransactionCreate())
		t.GET("/transactions", api.tradeHandler.TransactionsGet())
		t.GET("/portfolio", api.tradeHandler.PortfolioGet())
		t.GET("/stats", api.tradeHandler.StatsGet())
	}

	u := base.Group("/user", middleware.AuthToken())
	{
		u.GET("/info", api.userHandler.UserInfoGet())
		u.GET("/settings", api.userHandler.SettingGet())
		u.PUT("/settings", api.userHandler.SettingUpdate())
	}

	auth := base.Group("/auth")
	{
		auth.POST("/login", api.userHandler.UserLogin())
		auth.POST("/register", middleware.AntiDuplicateMiddleware(), api.userHandler.UserRegister())
		auth.POST("/checkemail", api.userHandler.UserVerifyEmail())
		auth.POST("/logout", middleware.AuthToken(), api.userHandler.UserLogout())
	}
}
