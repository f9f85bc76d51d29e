package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cryptograph/internal/model"
	pkgerrors "cryptograph/pkg/errors"
	"cryptograph/pkg/errors/ecode"
)

type fakeData struct {
	price  float64
	closes []float64
	err    error
	calls  int
}

func (f *fakeData) CurrentPrice(_ context.Context, coin string) (model.PriceQuote, error) {
	f.calls++
	if f.err != nil {
		return model.PriceQuote{}, f.err
	}
	return model.PriceQuote{Symbol: coin, Price: f.price, Currency: "USD", Timestamp: time.Now()}, nil
}

func (f *fakeData) Candlesticks(_ context.Context, coin, _ string, limit int) ([]model.Candlestick, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.Candlestick{{Symbol: coin, Close: f.price}}, nil
}

func (f *fakeData) DailyCloses(_ context.Context, coin string, days int) ([]model.PricePoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := days
	if n > len(f.closes) {
		n = len(f.closes)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PricePoint, 0, n)
	for i, price := range f.closes[len(f.closes)-n:] {
		out = append(out, model.PricePoint{Date: base.AddDate(0, 0, i), Price: price, Symbol: coin})
	}
	return out, nil
}

func TestCurrentPriceUnsupportedCoin(t *testing.T) {
	s := NewMarketService(&fakeData{price: 1}, nil, nil)
	_, err := s.CurrentPrice(context.Background(), "DOGE")
	if err == nil {
		t.Fatal("expected error for unsupported coin")
	}
	if code, _ := pkgerrors.DecodeErr(err); code != ecode.InvalidParamErr {
		t.Errorf("code = %d, want InvalidParamErr", code)
	}
}

func TestCurrentPricePassthroughWithoutCache(t *testing.T) {
	data := &fakeData{price: 42000}
	s := NewMarketService(data, nil, nil)
	quote, err := s.CurrentPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if quote.Price != 42000 || quote.Symbol != "BTC" {
		t.Errorf("quote = %+v", quote)
	}
}

func TestCurrentPriceUpstreamError(t *testing.T) {
	s := NewMarketService(&fakeData{err: errors.New("boom")}, nil, nil)
	_, err := s.CurrentPrice(context.Background(), "BTC")
	if err == nil {
		t.Fatal("expected upstream error")
	}
	if code, _ := pkgerrors.DecodeErr(err); code != ecode.UpstreamErr {
		t.Errorf("code = %d, want UpstreamErr", code)
	}
}

func TestHistoricalMovingAveragesValues(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1) // 1..20
	}
	s := NewMarketService(&fakeData{closes: closes}, nil, nil)

	points, err := s.HistoricalMovingAverages(context.Background(), "BTC", 5)
	if err != nil {
		t.Fatalf("HistoricalMovingAverages: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("points = %d, want 5", len(points))
	}
	last := points[len(points)-1]
	if last.Close != 20 {
		t.Fatalf("last close = %v, want 20", last.Close)
	}
	want := map[int]float64{1: 20, 2: 19.5, 5: 18, 9: 16, 15: 13}
	for p, exp := range want {
		got := last.MovingAverages[p]
		if got == nil {
			t.Errorf("ma%d = nil, want %v", p, exp)
			continue
		}
		if diff := *got - exp; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("ma%d = %v, want %v", p, *got, exp)
		}
	}
}

func TestHistoricalMovingAveragesWarmupNulls(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19} // 10天，凑不满15日窗口
	s := NewMarketService(&fakeData{closes: closes}, nil, nil)

	points, err := s.HistoricalMovingAverages(context.Background(), "ETH", 30)
	if err != nil {
		t.Fatalf("HistoricalMovingAverages: %v", err)
	}
	if len(points) != 10 {
		t.Fatalf("points = %d, want 10", len(points))
	}
	first := points[0]
	if first.MovingAverages[1] == nil {
		t.Error("ma1 on first day should be the close itself")
	}
	if first.MovingAverages[5] != nil {
		t.Error("ma5 on first day should be null before warmup")
	}
	for _, pt := range points {
		if pt.MovingAverages[15] != nil {
			t.Error("ma15 should stay null when history is shorter than the window")
		}
	}
	last := points[len(points)-1]
	if last.MovingAverages[9] == nil {
		t.Error("ma9 on day 10 should be available")
	}
}
