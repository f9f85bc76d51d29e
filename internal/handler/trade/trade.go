package trade

import (
	"github.com/gin-gonic/gin"

	"cryptograph/internal/consts"
	"cryptograph/internal/model"
	"cryptograph/internal/service"
	"cryptograph/pkg/errors"
	"cryptograph/pkg/errors/ecode"
	"cryptograph/pkg/response"
	"cryptograph/pkg/validator"
)

type TradeHandler struct {
	service *service.TradeService
}

func NewTradeHandler(service *service.TradeService) *TradeHandler {
	return &TradeHandler{service: service}
}

// @Summary		下单，买单可附带止损条件
// @Produce		json
// @Param			Authorization	header		string						true	"Bearer 用户令牌"
// @Param			data			body		model.TransactionCreateReq	true	"订单"
// @Success		200				{object}	response.ApiResponse{data=entity.Transaction}
// @Router			/api/v1/trade/transactions [post]
func (handler *TradeHandler) TransactionCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt64(consts.UserID)
		var req model.TransactionCreateReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InvalidParamErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.TransactionCreate(ctx, userId, req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		交易记录
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Param			status			query		string	false	"open或closed"
// @Param			coin_symbol		query		string	false	"按币种过滤"
// @Param			limit			query		int		false	"条数，默认50"
// @Param			offset			query		int		false	"偏移"
// @Success		200				{object}	response.ApiResponse{data=[]model.TransactionRes}
// @Router			/api/v1/trade/transactions [get]
func (handler *TradeHandler) TransactionsGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt64(consts.UserID)
		var req model.TransactionListReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InvalidParamErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.TransactionsGet(ctx, userId, req)
		if err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InternalErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		当前持仓，带实时估值
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Success		200				{object}	response.ApiResponse{data=[]model.PortfolioItemRes}
// @Router			/api/v1/trade/portfolio [get]
func (handler *TradeHandler) PortfolioGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt64(consts.UserID)
		res, err := handler.service.PortfolioGet(ctx, userId)
		if err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InternalErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		交易统计
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Success		200				{object}	response.ApiResponse{data=model.TradingStatsRes}
// @Router			/api/v1/trade/stats [get]
func (handler *TradeHandler) StatsGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt64(consts.UserID)
		res, err := handler.service.StatsGet(ctx, userId)
		if err != nil {
			response.JSON(ctx, errors.WithCode(ecode.InternalErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
