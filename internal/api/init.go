package api

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cryptograph/conf"
	"cryptograph/internal/dao"
	"cryptograph/internal/engine"
	"cryptograph/internal/exchange/binance"
	"cryptograph/internal/handler/market"
	"cryptograph/internal/handler/ticker"
	"cryptograph/internal/handler/trade"
	"cryptograph/internal/handler/user"
	"cryptograph/internal/router"
	"cryptograph/internal/service"
	"cryptograph/pkg/kafka"
	"cryptograph/pkg/mail"
	"cryptograph/pkg/uuid"
)

// InitApp 组装全部依赖：dao、service、handler、止损引擎。
// 返回的cleanup在进程退出时调用。
func InitApp(gdb *gorm.DB, rdb *redis.Client) (Router, *engine.Engine, func()) {
	appCfg := conf.AppConfig

	binanceClient := binance.NewClient(appCfg.Binance)

	marketDao := dao.NewMarketDao(gdb)
	tradeDao := dao.NewTradeDao(gdb)
	userDao := dao.NewUserDao(gdb)

	var sender *mail.Sender
	if appCfg.Email.Host != "" {
		sender = mail.NewSender(appCfg.Email)
	}

	marketService := service.NewMarketService(binanceClient, marketDao, rdb)
	tradeService := service.NewTradeService(tradeDao, userDao, marketService, sender)
	userService := service.NewUserService(userDao, uuid.NewNode(1))

	// 止损引擎通过MarketService拿价格，顺带吃到redis缓存
	opts := []engine.Option{
		engine.WithRefresher(marketService),
		engine.WithSweepInterval(appCfg.Engine.SweepInterval.Std()),
		engine.WithRefreshInterval(appCfg.Engine.RefreshInterval.Std()),
	}
	if sender != nil {
		opts = append(opts, engine.WithNotifier(engine.NewEmailNotifier(sender)))
	}
	var producer *kafka.Producer
	if appCfg.Kafka.Broker != "" {
		producer = kafka.NewProducer(appCfg.Kafka)
		opts = append(opts, engine.WithNotifier(engine.NewKafkaNotifier(producer)))
	}
	eng := engine.New(tradeDao, marketService, engine.NewWatermarks(), opts...)

	tickerHandler := ticker.NewHandler(marketService)

	apiRouter := router.NewApiRouter(
		market.NewMarketHandler(marketService),
		trade.NewTradeHandler(tradeService),
		user.NewUserHandler(userService),
		tickerHandler,
	)

	cleanup := func() {
		tickerHandler.Close()
		if producer != nil {
			_ = producer.Close()
		}
	}
	return apiRouter, eng, cleanup
}
