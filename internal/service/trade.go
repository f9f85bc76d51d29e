package service

import (
	"context"
	goerrors "errors"
	"fmt"

	"cryptograph/internal/consts"
	"cryptograph/internal/dao"
	"cryptograph/internal/model"
	"cryptograph/internal/model/entity"
	"cryptograph/pkg/errors"
	"cryptograph/pkg/errors/ecode"
	"cryptograph/pkg/logger"
	"cryptograph/pkg/mail"
)

type TradeService struct {
	trades *dao.TradeDao
	users  dao.UserDao
	market *MarketService
	sender *mail.Sender // 为nil时不发成交确认邮件
}

func NewTradeService(trades *dao.TradeDao, users dao.UserDao, market *MarketService, sender *mail.Sender) *TradeService {
	return &TradeService{trades: trades, users: users, market: market, sender: sender}
}

// TransactionCreate 手动下单。卖单的持仓校验在dao事务的行锁之下做，
// 这里只拦明显不合法的参数。
func (s *TradeService) TransactionCreate(ctx context.Context, userId int64, req model.TransactionCreateReq) (*entity.Transaction, error) {
	if !consts.IsSupportedCoin(req.CoinSymbol) {
		return nil, errors.WithCode(ecode.InvalidParamErr, fmt.Sprintf("unsupported coin: %s", req.CoinSymbol))
	}
	side := entity.TradeSide(req.Type)
	if side == entity.TradeSell && (req.StopLimit != nil || req.TrailingStopPct != nil) {
		return nil, errors.WithCode(ecode.InvalidParamErr, "stop orders only apply to buy transactions")
	}
	tr := &entity.Transaction{
		UserId:             userId,
		CoinSymbol:         req.CoinSymbol,
		Type:               side,
		Quantity:           req.Quantity,
		PriceAtTransaction: req.PriceAtTransaction,
		StopLimit:          req.StopLimit,
		TrailingStopPct:    req.TrailingStopPct,
		Status:             entity.TradeOpen,
	}
	if err := s.trades.TransactionCreate(ctx, tr); err != nil {
		if goerrors.Is(err, dao.ErrInsufficientHolding) {
			return nil, errors.WithCode(ecode.InsufficientBalanceErr, "insufficient holding for sell")
		}
		return nil, err
	}
	s.sendConfirmation(ctx, tr)
	return tr, nil
}

// sendConfirmation 成交确认邮件，失败只记日志
func (s *TradeService) sendConfirmation(ctx context.Context, tr *entity.Transaction) {
	if s.sender == nil {
		return
	}
	user, err := s.users.UserGetById(ctx, tr.UserId)
	if err != nil {
		logger.Warn("load user for confirmation failed", logger.Pair("user_id", tr.UserId), logger.Pair("err", err.Error()))
		return
	}
	if setting, err := s.users.SettingGet(ctx, tr.UserId); err == nil && !setting.NotifyEmail {
		return
	}
	if err := s.sender.SendTradeConfirmation(user.Email, user.Username, string(tr.Type), tr.CoinSymbol, tr.Quantity, tr.PriceAtTransaction); err != nil {
		logger.Warn("trade confirmation mail failed", logger.Pair("user_id", tr.UserId), logger.Pair("err", err.Error()))
	}
}

func (s *TradeService) TransactionsGet(ctx context.Context, userId int64, req model.TransactionListReq) ([]model.TransactionRes, error) {
	return s.trades.TransactionsGet(ctx, userId, req)
}

// PortfolioGet 持仓列表叠加实时价。行情失败降级为只返回持仓本身。
func (s *TradeService) PortfolioGet(ctx context.Context, userId int64) ([]model.PortfolioItemRes, error) {
	rows, err := s.trades.PortfolioGet(ctx, userId)
	if err != nil {
		return nil, err
	}
	out := make([]model.PortfolioItemRes, 0, len(rows))
	for i := range rows {
		item := model.PortfolioItemRes{Portfolio: rows[i]}
		if quote, err := s.market.CurrentPrice(ctx, rows[i].CoinSymbol); err == nil {
			item.CurrentPrice = quote.Price
			item.CurrentValue = quote.Price * rows[i].Quantity
			item.UnrealizedPL = (quote.Price - rows[i].AvgPrice) * rows[i].Quantity
		} else {
			logger.Warn("portfolio price lookup failed",
				logger.Pair("coin", rows[i].CoinSymbol), logger.Pair("err", err.Error()))
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *TradeService) StatsGet(ctx context.Context, userId int64) (model.TradingStatsRes, error) {
	return s.trades.StatsGet(ctx, userId)
}
