package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cryptograph/internal/dao"
	"cryptograph/internal/model"
	"cryptograph/internal/model/entity"
)

type liquidation struct {
	orderId int64
	price   float64
	trigger string
}

type fakeStore struct {
	mu            sync.Mutex
	orders        []model.StopOrder
	liquidations  []liquidation
	failLiquidate bool
	listErr       error
	listGate      chan struct{} // 不为nil时 List 阻塞到通道关闭
}

func (s *fakeStore) ListOpenStopOrders(_ context.Context) ([]model.StopOrder, error) {
	if s.listGate != nil {
		<-s.listGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var open []model.StopOrder
	for _, o := range s.orders {
		if o.Tx.Status == entity.TradeOpen {
			open = append(open, o)
		}
	}
	return open, nil
}

func (s *fakeStore) LiquidateOrder(_ context.Context, order *entity.Transaction, price float64, triggerType string) (*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLiquidate {
		return nil, errors.New("database unavailable")
	}
	for i := range s.orders {
		if s.orders[i].Tx.Id != order.Id {
			continue
		}
		if s.orders[i].Tx.Status != entity.TradeOpen {
			return nil, dao.ErrOrderNotOpen
		}
		s.orders[i].Tx.Status = entity.TradeClosed
		s.liquidations = append(s.liquidations, liquidation{order.Id, price, triggerType})
		return &entity.Transaction{
			Id:                 order.Id + 1000,
			UserId:             order.UserId,
			CoinSymbol:         order.CoinSymbol,
			Type:               entity.TradeSell,
			Quantity:           order.Quantity,
			PriceAtTransaction: price,
			Status:             entity.TradeClosed,
		}, nil
	}
	return nil, dao.ErrOrderNotOpen
}

func (s *fakeStore) done() []liquidation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]liquidation, len(s.liquidations))
	copy(out, s.liquidations)
	return out
}

type scriptedPrices struct {
	mu   sync.Mutex
	seq  map[string][]float64
	idx  map[string]int
	errs map[string]error
}

func (p *scriptedPrices) CurrentPrice(_ context.Context, coin string) (model.PriceQuote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.errs != nil {
		if err := p.errs[coin]; err != nil {
			return model.PriceQuote{}, err
		}
	}
	s := p.seq[coin]
	if len(s) == 0 {
		return model.PriceQuote{}, fmt.Errorf("no scripted price for %s", coin)
	}
	i := p.idx[coin]
	if i >= len(s) {
		i = len(s) - 1
	} else {
		if p.idx == nil {
			p.idx = make(map[string]int)
		}
		p.idx[coin] = i + 1
	}
	return model.PriceQuote{Symbol: coin, Price: s[i], Currency: "USD", Timestamp: time.Now()}, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []LiquidationEvent
	err    error
}

func (n *fakeNotifier) NotifyLiquidation(_ context.Context, ev LiquidationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func stopOrder(id, uid int64, coin string, qty float64, stop, trailing *float64) model.StopOrder {
	return model.StopOrder{
		Tx: entity.Transaction{
			Id:              id,
			UserId:          uid,
			CoinSymbol:      coin,
			Type:            entity.TradeBuy,
			Quantity:        qty,
			StopLimit:       stop,
			TrailingStopPct: trailing,
			Status:          entity.TradeOpen,
		},
		Email:       "trader@example.com",
		Username:    "trader",
		NotifyEmail: true,
	}
}

func TestStopLossTriggersAtThreshold(t *testing.T) {
	store := &fakeStore{orders: []model.StopOrder{stopOrder(1, 7, "BTC", 1, fp(40000), nil)}}
	prices := &scriptedPrices{seq: map[string][]float64{"BTC": {41000, 40500, 39900}}, idx: map[string]int{}}
	notifier := &fakeNotifier{}
	e := New(store, prices, NewWatermarks(), WithNotifier(notifier))

	for i := 0; i < 2; i++ {
		if err := e.RunSweep(context.Background()); err != nil {
			t.Fatalf("sweep %d: %v", i+1, err)
		}
		if got := store.done(); len(got) != 0 {
			t.Fatalf("sweep %d liquidated early: %+v", i+1, got)
		}
	}
	if err := e.RunSweep(context.Background()); err != nil {
		t.Fatalf("sweep 3: %v", err)
	}
	got := store.done()
	if len(got) != 1 {
		t.Fatalf("liquidations = %d, want 1", len(got))
	}
	if got[0].price != 39900 || got[0].trigger != "Stop Loss" {
		t.Errorf("liquidation = %+v, want price 39900 trigger Stop Loss", got[0])
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}

	// 平掉的单不会再被扫到
	if err := e.RunSweep(context.Background()); err != nil {
		t.Fatalf("sweep 4: %v", err)
	}
	if got := store.done(); len(got) != 1 {
		t.Errorf("closed order re-liquidated: %+v", got)
	}
}

func TestTrailingStopFollowsHighWaterMark(t *testing.T) {
	store := &fakeStore{orders: []model.StopOrder{stopOrder(1, 7, "ETH", 2, nil, fp(5))}}
	prices := &scriptedPrices{seq: map[string][]float64{"ETH": {100, 110, 104}}, idx: map[string]int{}}
	e := New(store, prices, NewWatermarks())

	for i := 0; i < 2; i++ {
		if err := e.RunSweep(context.Background()); err != nil {
			t.Fatalf("sweep %d: %v", i+1, err)
		}
	}
	if got := store.done(); len(got) != 0 {
		t.Fatalf("triggered before drop from high: %+v", got)
	}
	// 高点110，阈值104.5，104触发
	if err := e.RunSweep(context.Background()); err != nil {
		t.Fatalf("sweep 3: %v", err)
	}
	got := store.done()
	if len(got) != 1 || got[0].price != 104 || got[0].trigger != "Trailing Stop" {
		t.Fatalf("liquidations = %+v, want one Trailing Stop at 104", got)
	}
}

func TestZeroTrailingPctTriggersOnFirstObservation(t *testing.T) {
	store := &fakeStore{orders: []model.StopOrder{stopOrder(1, 7, "XRP", 100, nil, fp(0))}}
	prices := &scriptedPrices{seq: map[string][]float64{"XRP": {0.52}}, idx: map[string]int{}}
	e := New(store, prices, NewWatermarks())

	if err := e.RunSweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	got := store.done()
	if len(got) != 1 || got[0].trigger != "Trailing Stop" {
		t.Fatalf("liquidations = %+v, want immediate Trailing Stop", got)
	}
}

func TestSweepContinuesPastFailingOrder(t *testing.T) {
	store := &fakeStore{orders: []model.StopOrder{
		stopOrder(1, 7, "BTC", 1, fp(40000), nil),
		stopOrder(2, 8, "ETH", 2, fp(2000), nil),
	}}
	prices := &scriptedPrices{
		seq:  map[string][]float64{"ETH": {1900}},
		idx:  map[string]int{},
		errs: map[string]error{"BTC": errors.New("upstream timeout")},
	}
	e := New(store, prices, NewWatermarks())

	err := e.RunSweep(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error from failing order")
	}
	got := store.done()
	if len(got) != 1 || got[0].orderId != 2 {
		t.Fatalf("liquidations = %+v, want only order 2", got)
	}
}

func TestFailedLiquidationRetriedNextSweep(t *testing.T) {
	store := &fakeStore{
		orders:        []model.StopOrder{stopOrder(1, 7, "BTC", 1, fp(40000), nil)},
		failLiquidate: true,
	}
	prices := &scriptedPrices{seq: map[string][]float64{"BTC": {39000}}, idx: map[string]int{}}
	notifier := &fakeNotifier{}
	e := New(store, prices, NewWatermarks(), WithNotifier(notifier))

	if err := e.RunSweep(context.Background()); err == nil {
		t.Fatal("expected error when liquidation fails")
	}
	if got := store.done(); len(got) != 0 {
		t.Fatalf("partial liquidation recorded: %+v", got)
	}
	if notifier.count() != 0 {
		t.Fatal("notified despite failed liquidation")
	}

	store.mu.Lock()
	store.failLiquidate = false
	store.mu.Unlock()
	if err := e.RunSweep(context.Background()); err != nil {
		t.Fatalf("retry sweep: %v", err)
	}
	if got := store.done(); len(got) != 1 {
		t.Fatalf("liquidations after retry = %+v, want 1", got)
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}
}

func TestRaceWithManualCloseIsBenign(t *testing.T) {
	order := stopOrder(1, 7, "BTC", 1, fp(40000), nil)
	order.Tx.Status = entity.TradeClosed
	store := &fakeStore{orders: []model.StopOrder{order}}
	prices := &scriptedPrices{seq: map[string][]float64{"BTC": {39000}}, idx: map[string]int{}}
	notifier := &fakeNotifier{}
	e := New(store, prices, NewWatermarks(), WithNotifier(notifier))

	// 扫描快照里还是open，但提交时单已被手动平掉
	if err := e.processOrder(context.Background(), stopOrder(1, 7, "BTC", 1, fp(40000), nil)); err != nil {
		t.Fatalf("processOrder on closed order: %v", err)
	}
	if notifier.count() != 0 {
		t.Error("notified for an order closed by someone else")
	}
}

func TestNotifierFailureDoesNotUndoLiquidation(t *testing.T) {
	store := &fakeStore{orders: []model.StopOrder{stopOrder(1, 7, "BTC", 1, fp(40000), nil)}}
	prices := &scriptedPrices{seq: map[string][]float64{"BTC": {39000}}, idx: map[string]int{}}
	notifier := &fakeNotifier{err: errors.New("smtp refused")}
	e := New(store, prices, NewWatermarks(), WithNotifier(notifier))

	if err := e.RunSweep(context.Background()); err != nil {
		t.Fatalf("sweep returned error on notify failure: %v", err)
	}
	if got := store.done(); len(got) != 1 {
		t.Fatalf("liquidations = %+v, want 1", got)
	}
}

func TestOverlappingSweepSkipped(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{listGate: gate}
	prices := &scriptedPrices{seq: map[string][]float64{}}
	e := New(store, prices, NewWatermarks())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.RunSweep(context.Background())
	}()

	for i := 0; i < 100; i++ {
		if e.sweeping.Load() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := e.RunSweep(context.Background()); !errors.Is(err, ErrSweepInProgress) {
		t.Errorf("overlapping sweep err = %v, want ErrSweepInProgress", err)
	}
	close(gate)
	wg.Wait()

	if err := e.RunSweep(context.Background()); err != nil {
		t.Errorf("sweep after previous finished: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	store := &fakeStore{orders: []model.StopOrder{stopOrder(1, 7, "BTC", 1, fp(40000), nil)}}
	prices := &scriptedPrices{seq: map[string][]float64{"BTC": {39000}}, idx: map[string]int{}}
	e := New(store, prices, NewWatermarks(), WithSweepInterval(10*time.Millisecond))

	e.Start()
	e.Start() // 重复启动应当无副作用
	deadline := time.After(2 * time.Second)
	for len(store.done()) == 0 {
		select {
		case <-deadline:
			t.Fatal("engine never swept after Start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	e.Stop()
	e.Stop()

	after := len(store.done())
	time.Sleep(30 * time.Millisecond)
	if got := len(store.done()); got != after {
		t.Errorf("liquidations after Stop grew from %d to %d", after, got)
	}
}
