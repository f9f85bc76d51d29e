package market

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"cryptograph/internal/service"
	"cryptograph/pkg/response"
)

type MarketHandler struct {
	service *service.MarketService
}

func NewMarketHandler(service *service.MarketService) *MarketHandler {
	return &MarketHandler{service: service}
}

// @Summary		所有支持币种的最新报价
// @Produce		json
// @Success		200	{object}	response.ApiResponse{data=[]model.PriceQuote}
// @Router			/api/v1/market/prices [get]
func (handler *MarketHandler) PricesGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := handler.service.CurrentPrices(ctx)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		某个币的最新报价
// @Produce		json
// @Param			coin	path		string	true	"币种，如BTC"
// @Success		200		{object}	response.ApiResponse{data=model.PriceQuote}
// @Router			/api/v1/market/prices/{coin} [get]
func (handler *MarketHandler) PriceGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := handler.service.CurrentPrice(ctx, ctx.Param("coin"))
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		K线数据
// @Produce		json
// @Param			coin		path		string	true	"币种"
// @Param			interval	query		string	false	"K线周期，默认1h"
// @Param			limit		query		int		false	"条数，默认100"
// @Success		200			{object}	response.ApiResponse{data=[]model.Candlestick}
// @Router			/api/v1/market/candlesticks/{coin} [get]
func (handler *MarketHandler) CandlesticksGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		interval := ctx.DefaultQuery("interval", "1h")
		limit := cast.ToInt(ctx.DefaultQuery("limit", "100"))
		res, err := handler.service.Candlesticks(ctx, ctx.Param("coin"), interval, limit)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		最近N天的日线收盘价
// @Produce		json
// @Param			coin	path		string	true	"币种"
// @Param			days	query		int		false	"天数，默认30"
// @Success		200		{object}	response.ApiResponse{data=[]model.PricePoint}
// @Router			/api/v1/market/historical/{coin} [get]
func (handler *MarketHandler) HistoricalGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		days := cast.ToInt(ctx.DefaultQuery("days", "30"))
		res, err := handler.service.DailyHistory(ctx, ctx.Param("coin"), days)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		所有币种的均线快照
// @Produce		json
// @Success		200	{object}	response.ApiResponse{data=[]model.MovingAveragesRes}
// @Router			/api/v1/market/moving-averages [get]
func (handler *MarketHandler) MovingAveragesGetAll() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := handler.service.MovingAveragesGetAll(ctx)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		最近一次计算的各周期均线
// @Produce		json
// @Param			coin	path		string	true	"币种"
// @Success		200		{object}	response.ApiResponse{data=model.MovingAveragesRes}
// @Router			/api/v1/market/moving-averages/{coin} [get]
func (handler *MarketHandler) MovingAveragesGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := handler.service.MovingAveragesGet(ctx, ctx.Param("coin"))
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		历史均线序列，给图表叠加用
// @Produce		json
// @Param			coin	path		string	true	"币种"
// @Param			days	query		int		false	"天数，默认30"
// @Success		200		{object}	response.ApiResponse{data=[]model.MAPoint}
// @Router			/api/v1/market/moving-averages/{coin}/history [get]
func (handler *MarketHandler) MovingAveragesHistoryGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		days := cast.ToInt(ctx.DefaultQuery("days", "30"))
		res, err := handler.service.HistoricalMovingAverages(ctx, ctx.Param("coin"), days)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
