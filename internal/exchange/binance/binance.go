package binance

import (
	"context"
	"cryptograph/conf"
	"cryptograph/internal/model"
	"cryptograph/pkg/logger"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"
)

// Binance REST v3 行情客户端。只做公共行情，不需要API key。
// 429/5xx 按指数退避重试，超出次数后把错误抛给调用方跳过本次评估。

var symbolMap = map[string]string{
	"BTC": "BTCUSDT",
	"ETH": "ETHUSDT",
	"XRP": "XRPUSDT",
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

func NewClient(cfg conf.BinanceConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout.Std()},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay.Std(),
	}
}

// CurrentPrice 最新成交价
func (c *Client) CurrentPrice(ctx context.Context, coinSymbol string) (model.PriceQuote, error) {
	symbol, ok := symbolMap[coinSymbol]
	if !ok {
		return model.PriceQuote{}, fmt.Errorf("unsupported coin: %s", coinSymbol)
	}

	var data struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	params := url.Values{"symbol": {symbol}}
	if err := c.getJSON(ctx, "/ticker/price", params, &data); err != nil {
		return model.PriceQuote{}, fmt.Errorf("fetch price for %s: %w", coinSymbol, err)
	}

	price, err := cast.ToFloat64E(data.Price)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("parse price %q for %s: %w", data.Price, coinSymbol, err)
	}
	return model.PriceQuote{
		Symbol:    coinSymbol,
		Price:     price,
		Currency:  "USD",
		Timestamp: time.Now(),
	}, nil
}

// Candlesticks K线数据，interval如 1d/4h/1h
func (c *Client) Candlesticks(ctx context.Context, coinSymbol, interval string, limit int) ([]model.Candlestick, error) {
	symbol, ok := symbolMap[coinSymbol]
	if !ok {
		return nil, fmt.Errorf("unsupported coin: %s", coinSymbol)
	}
	params := url.Values{
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {cast.ToString(limit)},
	}

	raw, err := c.klines(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch candlesticks for %s: %w", coinSymbol, err)
	}

	out := make([]model.Candlestick, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		out = append(out, model.Candlestick{
			Date:   time.UnixMilli(cast.ToInt64(k[0])),
			Open:   cast.ToFloat64(k[1]),
			High:   cast.ToFloat64(k[2]),
			Low:    cast.ToFloat64(k[3]),
			Close:  cast.ToFloat64(k[4]),
			Volume: cast.ToFloat64(k[5]),
			Symbol: coinSymbol,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// DailyCloses 最近days天的日线收盘价，给均线计算用
func (c *Client) DailyCloses(ctx context.Context, coinSymbol string, days int) ([]model.PricePoint, error) {
	symbol, ok := symbolMap[coinSymbol]
	if !ok {
		return nil, fmt.Errorf("unsupported coin: %s", coinSymbol)
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	params := url.Values{
		"symbol":    {symbol},
		"interval":  {"1d"},
		"startTime": {cast.ToString(start.UnixMilli())},
		"endTime":   {cast.ToString(end.UnixMilli())},
		"limit":     {"1000"},
	}

	raw, err := c.klines(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch historical data for %s: %w", coinSymbol, err)
	}

	out := make([]model.PricePoint, 0, len(raw))
	for _, k := range raw {
		if len(k) < 5 {
			continue
		}
		out = append(out, model.PricePoint{
			Date:   time.UnixMilli(cast.ToInt64(k[0])),
			Price:  cast.ToFloat64(k[4]),
			Symbol: coinSymbol,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (c *Client) klines(ctx context.Context, params url.Values) ([][]interface{}, error) {
	var raw [][]interface{}
	if err := c.getJSON(ctx, "/klines", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// getJSON 带限速和重试的GET，只对429和5xx重试
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}

		retryable := true
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			switch {
			case resp.StatusCode == http.StatusOK:
				lastErr = json.NewDecoder(resp.Body).Decode(result)
				retryable = false
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("binance responded %d", resp.StatusCode)
			default:
				// 4xx不重试
				lastErr = fmt.Errorf("binance responded %d", resp.StatusCode)
				retryable = false
			}
			resp.Body.Close()
		}
		if lastErr == nil {
			return nil
		}
		if !retryable || attempt == c.maxRetries {
			return lastErr
		}

		logger.Warnf("binance request %s failed (attempt %d/%d): %v", path, attempt+1, c.maxRetries, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}
