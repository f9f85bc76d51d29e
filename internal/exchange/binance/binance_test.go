package binance

import (
	"context"
	"cryptograph/conf"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(baseURL string) *Client {
	return NewClient(conf.BinanceConfig{
		BaseURL:        baseURL,
		RequestTimeout: conf.Duration(2 * time.Second),
		RatePerSec:     100,
		MaxRetries:     2,
		RetryDelay:     conf.Duration(time.Millisecond),
	})
}

func TestCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ticker/price" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol = %s, want BTCUSDT", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"39900.12000000"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	quote, err := c.CurrentPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Price != 39900.12 {
		t.Errorf("price = %v, want 39900.12", quote.Price)
	}
	if quote.Symbol != "BTC" {
		t.Errorf("symbol = %s, want BTC", quote.Symbol)
	}
}

func TestCurrentPriceUnsupportedCoin(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	if _, err := c.CurrentPrice(context.Background(), "DOGE"); err == nil {
		t.Fatal("expected error for unsupported coin")
	}
}

func TestCandlesticksParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Binance混合类型的kline数组：时间戳是数字，价格是字符串
		w.Write([]byte(`[
			[1700000000000,"41000.0","41100.0","40900.0","41050.0","12.5",1700086399999,"0",0,"0","0","0"],
			[1700086400000,"41050.0","41200.0","40500.0","40500.0","8.1",1700172799999,"0",0,"0","0","0"]
		]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ks, err := c.Candlesticks(context.Background(), "BTC", "1d", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ks) != 2 {
		t.Fatalf("got %d candles, want 2", len(ks))
	}
	if ks[0].Open != 41000 || ks[0].Close != 41050 {
		t.Errorf("first candle = %+v", ks[0])
	}
	if ks[1].Low != 40500 || ks[1].Volume != 8.1 {
		t.Errorf("second candle = %+v", ks[1])
	}
	if !ks[0].Date.Before(ks[1].Date) {
		t.Error("candles should be sorted ascending by date")
	}
}

func TestGetJSONRetriesOnRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"symbol":"ETHUSDT","price":"2200.5"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	quote, err := c.CurrentPrice(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if quote.Price != 2200.5 {
		t.Errorf("price = %v, want 2200.5", quote.Price)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGetJSONDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.CurrentPrice(context.Background(), "BTC"); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestGetJSONExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.CurrentPrice(context.Background(), "BTC"); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}
