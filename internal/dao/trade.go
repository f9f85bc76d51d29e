package dao

import (
	"context"
	"cryptograph/internal/model"
	"cryptograph/internal/model/entity"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrOrderNotOpen 订单已经被别的路径平掉了（比如用户手动卖出），放弃本次平仓
	ErrOrderNotOpen = errors.New("order is not open")
	// ErrInsufficientHolding 持仓不足，不能卖
	ErrInsufficientHolding = errors.New("insufficient holding for sell")
)

type TradeDao struct {
	db *gorm.DB
}

func NewTradeDao(db *gorm.DB) *TradeDao {
	return &TradeDao{db: db}
}

// TransactionCreate 用户主动下单：写交易记录、更新持仓、记流水，一个事务内完成。
// 卖单在行锁之下校验持仓，避免和引擎平仓并发时双扣。
func (d *TradeDao) TransactionCreate(ctx context.Context, tr *entity.Transaction) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tr).Error; err != nil {
			return err
		}
		if err := applyPortfolio(tx, tr.UserId, tr.CoinSymbol, tr.Type, tr.Quantity, tr.PriceAtTransaction); err != nil {
			return err
		}
		lg := entity.TradeLog{
			UserId:        tr.UserId,
			TransactionId: tr.Id,
			Action:        "CREATE",
			Message:       fmt.Sprintf("Created %s transaction for %v %s at $%v", tr.Type, tr.Quantity, tr.CoinSymbol, tr.PriceAtTransaction),
		}
		return tx.Create(&lg).Error
	})
}

// ListOpenStopOrders 查出所有挂了止损的未平仓买单，连带通知用的用户信息
func (d *TradeDao) ListOpenStopOrders(ctx context.Context) ([]model.StopOrder, error) {
	var rows []model.StopOrder
	err := d.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.*, u.email, u.username, COALESCE(s.notify_email, true) AS notify_email").
		Joins("JOIN users u ON u.id = t.user_id").
		Joins("LEFT JOIN settings s ON s.user_id = t.user_id").
		Where("t.status = ?", entity.TradeOpen).
		Where("t.type = ?", entity.TradeBuy).
		Where("t.stop_limit IS NOT NULL OR t.trailing_stop_pct IS NOT NULL").
		Scan(&rows).Error
	return rows, err
}

// LiquidateOrder 触发平仓：插入一笔closed卖单、关掉原单、扣持仓、写流水，
// 全部在一个事务里，任何一步失败整体回滚，订单留到下个tick重试。
func (d *TradeDao) LiquidateOrder(ctx context.Context, order *entity.Transaction, price float64, triggerType string) (*entity.Transaction, error) {
	sell := &entity.Transaction{
		UserId:             order.UserId,
		CoinSymbol:         order.CoinSymbol,
		Type:               entity.TradeSell,
		Quantity:           order.Quantity,
		PriceAtTransaction: price,
		Status:             entity.TradeClosed,
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 只有还open的订单才允许被引擎平掉；RowsAffected==0说明手动卖出抢先了
		res := tx.Model(&entity.Transaction{}).
			Where("id = ? AND status = ?", order.Id, entity.TradeOpen).
			Update("status", entity.TradeClosed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotOpen
		}

		if err := tx.Create(sell).Error; err != nil {
			return err
		}
		if err := applyPortfolio(tx, order.UserId, order.CoinSymbol, entity.TradeSell, order.Quantity, price); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"trigger_type": triggerType,
			"price":        price,
			"quantity":     order.Quantity,
			"coin_symbol":  order.CoinSymbol,
		})
		lg := entity.TradeLog{
			UserId:        order.UserId,
			TransactionId: sell.Id,
			Action:        "STOP_LOSS",
			Message:       fmt.Sprintf("%s triggered: Sold %v %s at $%v", triggerType, order.Quantity, order.CoinSymbol, price),
			Details:       datatypes.JSON(details),
		}
		return tx.Create(&lg).Error
	})
	if err != nil {
		return nil, err
	}
	return sell, nil
}

// TransactionsGet 按条件分页查交易记录
func (d *TradeDao) TransactionsGet(ctx context.Context, userId int64, req model.TransactionListReq) ([]model.TransactionRes, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := d.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.*, CASE WHEN t.type = 'buy' THEN -t.quantity * t.price_at_transaction ELSE t.quantity * t.price_at_transaction END AS transaction_value").
		Where("t.user_id = ?", userId)
	if req.Status != "" {
		q = q.Where("t.status = ?", req.Status)
	}
	if req.CoinSymbol != "" {
		q = q.Where("t.coin_symbol = ?", req.CoinSymbol)
	}

	var rows []model.TransactionRes
	err := q.Order("t.created_at DESC").Limit(limit).Offset(req.Offset).Scan(&rows).Error
	return rows, err
}

// PortfolioGet 用户全部持仓
func (d *TradeDao) PortfolioGet(ctx context.Context, userId int64) ([]entity.Portfolio, error) {
	var rows []entity.Portfolio
	err := d.db.WithContext(ctx).Where("user_id = ?", userId).Find(&rows).Error
	return rows, err
}

// StatsGet 用户交易统计
func (d *TradeDao) StatsGet(ctx context.Context, userId int64) (model.TradingStatsRes, error) {
	var res model.TradingStatsRes
	err := d.db.WithContext(ctx).
		Table("transactions").
		Select(`COUNT(*) AS total_transactions,
			COUNT(CASE WHEN type = 'buy' THEN 1 END) AS buy_transactions,
			COUNT(CASE WHEN type = 'sell' THEN 1 END) AS sell_transactions,
			COUNT(CASE WHEN status = 'open' THEN 1 END) AS open_transactions,
			COUNT(CASE WHEN status = 'closed' THEN 1 END) AS closed_transactions,
			COALESCE(SUM(CASE WHEN type = 'buy' THEN quantity * price_at_transaction ELSE 0 END), 0) AS total_bought,
			COALESCE(SUM(CASE WHEN type = 'sell' THEN quantity * price_at_transaction ELSE 0 END), 0) AS total_sold`).
		Where("user_id = ?", userId).
		Scan(&res).Error
	return res, err
}

// applyPortfolio 持仓更新规则，手动下单和引擎平仓共用这一份，
// 行锁串行化同一(user, coin)上的并发改动。
func applyPortfolio(tx *gorm.DB, userId int64, symbol string, side entity.TradeSide, quantity, price float64) error {
	var p entity.Portfolio
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND coin_symbol = ?", userId, symbol).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if side == entity.TradeBuy {
			return tx.Create(&entity.Portfolio{
				UserId:     userId,
				CoinSymbol: symbol,
				Quantity:   quantity,
				AvgPrice:   price,
			}).Error
		}
		return ErrInsufficientHolding
	}
	if err != nil {
		return err
	}

	if side == entity.TradeSell && p.Quantity < quantity {
		return ErrInsufficientHolding
	}

	newQty, newAvg, remove := nextPortfolio(p.Quantity, p.AvgPrice, quantity, price, side)
	if remove {
		return tx.Delete(&entity.Portfolio{}, "user_id = ? AND coin_symbol = ?", userId, symbol).Error
	}
	return tx.Model(&entity.Portfolio{}).
		Where("user_id = ? AND coin_symbol = ?", userId, symbol).
		Updates(map[string]interface{}{"quantity": newQty, "avg_price": newAvg}).Error
}

// nextPortfolio 纯函数：买入重算加权均价，卖出只扣数量，扣到<=0整行移除
func nextPortfolio(curQty, curAvg, quantity, price float64, side entity.TradeSide) (newQty, newAvg float64, remove bool) {
	if side == entity.TradeBuy {
		newQty = curQty + quantity
		newAvg = (curQty*curAvg + quantity*price) / newQty
		return newQty, newAvg, false
	}
	newQty = curQty - quantity
	newAvg = curAvg // 卖出不改均价
	if newQty <= 0 {
		return 0, newAvg, true
	}
	return newQty, newAvg, false
}
