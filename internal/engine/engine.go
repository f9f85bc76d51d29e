package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"cryptograph/internal/dao"
	"cryptograph/internal/model"
	"cryptograph/internal/model/entity"
	"cryptograph/pkg/logger"
)

// ErrSweepInProgress 上一轮扫描尚未结束时本轮直接跳过
var ErrSweepInProgress = errors.New("stop-order sweep already in progress")

// Store 引擎依赖的持久层操作
type Store interface {
	ListOpenStopOrders(ctx context.Context) ([]model.StopOrder, error)
	LiquidateOrder(ctx context.Context, order *entity.Transaction, price float64, triggerType string) (*entity.Transaction, error)
}

// PriceSource 提供实时报价
type PriceSource interface {
	CurrentPrice(ctx context.Context, coinSymbol string) (model.PriceQuote, error)
}

// Refresher 周期性重算均线
type Refresher interface {
	RefreshMovingAverages(ctx context.Context) error
}

// LiquidationEvent 在清算事务提交之后发给各通知端
type LiquidationEvent struct {
	Order       entity.Transaction `json:"order"`
	Sell        entity.Transaction `json:"sell"`
	Price       float64            `json:"price"`
	Trigger     string             `json:"trigger"`
	Email       string             `json:"-"`
	Username    string             `json:"username"`
	NotifyEmail bool               `json:"-"`
	At          time.Time          `json:"at"`
}

// Notifier 通知失败只记日志，绝不回滚已提交的清算
type Notifier interface {
	NotifyLiquidation(ctx context.Context, ev LiquidationEvent) error
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifiers = append(e.notifiers, n)
		}
	}
}

func WithRefresher(r Refresher) Option {
	return func(e *Engine) { e.refresher = r }
}

func WithSweepInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sweepInterval = d
		}
	}
}

func WithRefreshInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refreshInterval = d
		}
	}
}

// Engine 周期扫描所有带止损条件的未平仓买单并执行清算
type Engine struct {
	store     Store
	prices    PriceSource
	marks     Watermarks
	notifiers []Notifier
	refresher Refresher

	sweepInterval   time.Duration
	refreshInterval time.Duration

	running  atomic.Bool
	sweeping atomic.Bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(store Store, prices PriceSource, marks Watermarks, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		prices:          prices,
		marks:           marks,
		sweepInterval:   30 * time.Second,
		refreshInterval: time.Hour,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunSweep 执行一轮完整扫描。单个挂单出错不会中断其余挂单，
// 所有错误聚合后返回给调用方记录。
func (e *Engine) RunSweep(ctx context.Context) error {
	if !e.sweeping.CompareAndSwap(false, true) {
		return ErrSweepInProgress
	}
	defer e.sweeping.Store(false)

	orders, err := e.store.ListOpenStopOrders(ctx)
	if err != nil {
		return fmt.Errorf("list open stop orders: %w", err)
	}
	var errs error
	for i := range orders {
		if err := e.processOrder(ctx, orders[i]); err != nil {
			logger.Error("process stop order failed",
				logger.Pair("order_id", orders[i].Tx.Id),
				logger.Pair("coin", orders[i].Tx.CoinSymbol),
				logger.Pair("err", err.Error()))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (e *Engine) processOrder(ctx context.Context, so model.StopOrder) error {
	quote, err := e.prices.CurrentPrice(ctx, so.Tx.CoinSymbol)
	if err != nil {
		return fmt.Errorf("price lookup %s: %w", so.Tx.CoinSymbol, err)
	}
	highest := e.marks.Observe(so.Tx.UserId, so.Tx.CoinSymbol, quote.Price)

	trig := Evaluate(so.Tx.StopLimit, so.Tx.TrailingStopPct, quote.Price, highest)
	if trig == TriggerNone {
		return nil
	}

	sell, err := e.store.LiquidateOrder(ctx, &so.Tx, quote.Price, trig.String())
	if err != nil {
		if errors.Is(err, dao.ErrOrderNotOpen) {
			// 手动卖出或另一轮扫描抢先平仓，不算错误
			logger.Debug("order already closed, skip", logger.Pair("order_id", so.Tx.Id))
			return nil
		}
		return fmt.Errorf("liquidate order %d: %w", so.Tx.Id, err)
	}

	logger.Info("stop order executed",
		logger.Pair("order_id", so.Tx.Id),
		logger.Pair("user_id", so.Tx.UserId),
		logger.Pair("coin", so.Tx.CoinSymbol),
		logger.Pair("trigger", trig.String()),
		logger.Pair("price", quote.Price))

	e.notify(ctx, LiquidationEvent{
		Order:       so.Tx,
		Sell:        *sell,
		Price:       quote.Price,
		Trigger:     trig.String(),
		Email:       so.Email,
		Username:    so.Username,
		NotifyEmail: so.NotifyEmail,
		At:          time.Now(),
	})
	return nil
}

// notify 在事务提交后同步推送，任何失败仅记录
func (e *Engine) notify(ctx context.Context, ev LiquidationEvent) {
	for _, n := range e.notifiers {
		if err := n.NotifyLiquidation(ctx, ev); err != nil {
			logger.Error("liquidation notify failed",
				logger.Pair("order_id", ev.Order.Id),
				logger.Pair("err", err.Error()))
		}
	}
}

// Start 启动扫描与均线刷新定时器，重复调用无效果
func (e *Engine) Start() {
	if !e.running.CompareAndSwap(false, true) {
		logger.Warn("stop-order engine already running")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(1)
	go e.sweepLoop(ctx)
	if e.refresher != nil {
		e.wg.Add(1)
		go e.refreshLoop(ctx)
	}
	logger.Info("stop-order engine started",
		logger.Pair("sweep_interval", e.sweepInterval.String()),
		logger.Pair("refresh_interval", e.refreshInterval.String()))
}

// Stop 停止定时器并等当前一轮扫描做完
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	e.cancel()
	e.wg.Wait()
	logger.Info("stop-order engine stopped")
}

func (e *Engine) sweepLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 用独立的 context，Stop 只阻止下一轮，不打断进行中的清算
			if err := e.RunSweep(context.Background()); err != nil {
				if errors.Is(err, ErrSweepInProgress) {
					logger.Warn("sweep tick skipped, previous sweep still running")
					continue
				}
				logger.Error("stop-order sweep finished with errors", logger.Pair("err", err.Error()))
			}
		}
	}
}

func (e *Engine) refreshLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.refresher.RefreshMovingAverages(context.Background()); err != nil {
				logger.Error("moving average refresh failed", logger.Pair("err", err.Error()))
			}
		}
	}
}
