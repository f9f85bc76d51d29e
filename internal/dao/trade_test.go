package dao

import (
	"cryptograph/internal/model/entity"
	"math"
	"testing"
)

func TestNextPortfolioBuyRecomputesAvg(t *testing.T) {
	// 已持有2个均价100，再买2个价200，均价应为150
	qty, avg, remove := nextPortfolio(2, 100, 2, 200, entity.TradeBuy)
	if remove {
		t.Fatal("buy should never remove the row")
	}
	if qty != 4 {
		t.Errorf("quantity = %v, want 4", qty)
	}
	if math.Abs(avg-150) > 1e-9 {
		t.Errorf("avg price = %v, want 150", avg)
	}
}

func TestNextPortfolioSellKeepsAvg(t *testing.T) {
	qty, avg, remove := nextPortfolio(3, 120, 1, 90, entity.TradeSell)
	if remove {
		t.Fatal("partial sell should keep the row")
	}
	if qty != 2 {
		t.Errorf("quantity = %v, want 2", qty)
	}
	if avg != 120 {
		t.Errorf("sell must not change avg price, got %v", avg)
	}
}

func TestNextPortfolioSellToZeroRemovesRow(t *testing.T) {
	_, _, remove := nextPortfolio(1, 40000, 1, 39900, entity.TradeSell)
	if !remove {
		t.Error("selling the whole position should remove the row")
	}
}

func TestNextPortfolioSellsConvergeEitherOrder(t *testing.T) {
	// 手动卖出和引擎平仓交错时，先后顺序不影响最终持仓
	apply := func(first, second float64) float64 {
		qty, avg, remove := nextPortfolio(5, 100, first, 95, entity.TradeSell)
		if remove {
			t.Fatalf("unexpected removal after first sell of %v", first)
		}
		qty, _, remove = nextPortfolio(qty, avg, second, 90, entity.TradeSell)
		if remove {
			return 0
		}
		return qty
	}
	if a, b := apply(2, 1), apply(1, 2); a != b || a != 2 {
		t.Errorf("final quantity depends on commit order: %v vs %v, want 2", a, b)
	}
}

func TestNextPortfolioOversellRemovesRow(t *testing.T) {
	// applyPortfolio在锁内已经挡掉了超卖，这里只约束规则本身不产生负持仓
	qty, _, remove := nextPortfolio(1, 100, 2, 90, entity.TradeSell)
	if !remove {
		t.Error("quantity <= 0 should remove the row")
	}
	if qty != 0 {
		t.Errorf("removed row should report zero quantity, got %v", qty)
	}
}
