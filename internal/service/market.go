package service

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	talib "github.com/markcheno/go-talib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"cryptograph/internal/consts"
	"cryptograph/internal/dao"
	"cryptograph/internal/model"
	"cryptograph/internal/model/entity"
	"cryptograph/pkg/errors"
	"cryptograph/pkg/errors/ecode"
	"cryptograph/pkg/logger"
)

// marketData 行情来源，生产环境是币安REST客户端
type marketData interface {
	CurrentPrice(ctx context.Context, coinSymbol string) (model.PriceQuote, error)
	Candlesticks(ctx context.Context, coinSymbol, interval string, limit int) ([]model.Candlestick, error)
	DailyCloses(ctx context.Context, coinSymbol string, days int) ([]model.PricePoint, error)
}

type MarketService struct {
	data marketData
	dao  *dao.MarketDao
	rdb  *redis.Client // 可以为nil，此时不走缓存
}

func NewMarketService(data marketData, marketDao *dao.MarketDao, rdb *redis.Client) *MarketService {
	return &MarketService{data: data, dao: marketDao, rdb: rdb}
}

// CurrentPrice 带短TTL缓存的实时报价，避免每个请求都打到交易所
func (s *MarketService) CurrentPrice(ctx context.Context, coinSymbol string) (model.PriceQuote, error) {
	if !consts.IsSupportedCoin(coinSymbol) {
		return model.PriceQuote{}, errors.WithCode(ecode.InvalidParamErr, fmt.Sprintf("unsupported coin: %s", coinSymbol))
	}
	key := consts.MarketPricePrefix + coinSymbol
	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var quote model.PriceQuote
			if err := json.Unmarshal(data, &quote); err == nil {
				return quote, nil
			}
		}
	}
	quote, err := s.data.CurrentPrice(ctx, coinSymbol)
	if err != nil {
		return model.PriceQuote{}, errors.WithCode(ecode.UpstreamErr, err.Error())
	}
	if s.rdb != nil {
		if data, err := json.Marshal(quote); err == nil {
			if err := s.rdb.Set(ctx, key, data, consts.PriceCacheTTL).Err(); err != nil {
				logger.Warn("cache price failed", logger.Pair("coin", coinSymbol), logger.Pair("err", err.Error()))
			}
		}
	}
	return quote, nil
}

// CurrentPrices 所有支持币种的最新报价，单个币失败跳过不阻塞面板
func (s *MarketService) CurrentPrices(ctx context.Context) ([]model.PriceQuote, error) {
	out := make([]model.PriceQuote, 0, len(consts.SupportedCoins))
	var errs error
	for _, coin := range consts.SupportedCoins {
		quote, err := s.CurrentPrice(ctx, coin)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("price %s: %w", coin, err))
			continue
		}
		out = append(out, quote)
	}
	if len(out) == 0 && errs != nil {
		return nil, errors.WithCode(ecode.UpstreamErr, errs.Error())
	}
	return out, nil
}

// DailyHistory 最近N天的日线收盘价
func (s *MarketService) DailyHistory(ctx context.Context, coinSymbol string, days int) ([]model.PricePoint, error) {
	if !consts.IsSupportedCoin(coinSymbol) {
		return nil, errors.WithCode(ecode.InvalidParamErr, fmt.Sprintf("unsupported coin: %s", coinSymbol))
	}
	if days <= 0 {
		days = 30
	}
	points, err := s.data.DailyCloses(ctx, coinSymbol, days)
	if err != nil {
		return nil, errors.WithCode(ecode.UpstreamErr, err.Error())
	}
	return points, nil
}

// MovingAveragesGetAll 所有币种的均线快照
func (s *MarketService) MovingAveragesGetAll(ctx context.Context) ([]model.MovingAveragesRes, error) {
	out := make([]model.MovingAveragesRes, 0, len(consts.SupportedCoins))
	for _, coin := range consts.SupportedCoins {
		res, err := s.MovingAveragesGet(ctx, coin)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Candlesticks K线数据直接透传，不落缓存
func (s *MarketService) Candlesticks(ctx context.Context, coinSymbol, interval string, limit int) ([]model.Candlestick, error) {
	if !consts.IsSupportedCoin(coinSymbol) {
		return nil, errors.WithCode(ecode.InvalidParamErr, fmt.Sprintf("unsupported coin: %s", coinSymbol))
	}
	candles, err := s.data.Candlesticks(ctx, coinSymbol, interval, limit)
	if err != nil {
		return nil, errors.WithCode(ecode.UpstreamErr, err.Error())
	}
	return candles, nil
}

// MovingAveragesGet 返回库里最近一次计算的各周期均线
func (s *MarketService) MovingAveragesGet(ctx context.Context, coinSymbol string) (model.MovingAveragesRes, error) {
	if !consts.IsSupportedCoin(coinSymbol) {
		return model.MovingAveragesRes{}, errors.WithCode(ecode.InvalidParamErr, fmt.Sprintf("unsupported coin: %s", coinSymbol))
	}
	rows, err := s.dao.MovingAveragesGetLatest(ctx, coinSymbol)
	if err != nil {
		return model.MovingAveragesRes{}, err
	}
	res := model.MovingAveragesRes{
		Symbol:         coinSymbol,
		MovingAverages: make(map[int]*float64, len(consts.MovingAveragePeriods)),
	}
	for _, p := range consts.MovingAveragePeriods {
		res.MovingAverages[p] = nil
	}
	for i := range rows {
		v := rows[i].Value
		res.MovingAverages[rows[i].Days] = &v
		if rows[i].CalculatedAt.After(res.LastUpdated) {
			res.LastUpdated = rows[i].CalculatedAt
		}
	}
	return res, nil
}

// HistoricalMovingAverages 按日线序列算出每天的各周期均线，供图表叠加。
// 数据不足一个完整窗口的日子对应周期为null。
func (s *MarketService) HistoricalMovingAverages(ctx context.Context, coinSymbol string, days int) ([]model.MAPoint, error) {
	if !consts.IsSupportedCoin(coinSymbol) {
		return nil, errors.WithCode(ecode.InvalidParamErr, fmt.Sprintf("unsupported coin: %s", coinSymbol))
	}
	if days <= 0 {
		days = 30
	}
	maxPeriod := maxMovingAveragePeriod()
	points, err := s.data.DailyCloses(ctx, coinSymbol, days+maxPeriod)
	if err != nil {
		return nil, errors.WithCode(ecode.UpstreamErr, err.Error())
	}
	if len(points) == 0 {
		return []model.MAPoint{}, nil
	}
	closes := make([]float64, len(points))
	for i := range points {
		closes[i] = points[i].Price
	}
	smas := make(map[int][]float64, len(consts.MovingAveragePeriods))
	for _, p := range consts.MovingAveragePeriods {
		if len(closes) >= p {
			smas[p] = talib.Sma(closes, p)
		}
	}
	start := len(points) - days
	if start < 0 {
		start = 0
	}
	out := make([]model.MAPoint, 0, len(points)-start)
	for i := start; i < len(points); i++ {
		mas := make(map[int]*float64, len(consts.MovingAveragePeriods))
		for _, p := range consts.MovingAveragePeriods {
			if series, ok := smas[p]; ok && i >= p-1 {
				v := series[i]
				mas[p] = &v
			} else {
				mas[p] = nil
			}
		}
		out = append(out, model.MAPoint{Date: points[i].Date, Close: closes[i], MovingAverages: mas})
	}
	return out, nil
}

// RefreshMovingAverages 重算所有支持币种的均线快照并清理过期行，
// 引擎每小时调一次。单个币失败不影响其余币种。
func (s *MarketService) RefreshMovingAverages(ctx context.Context) error {
	maxPeriod := maxMovingAveragePeriod()
	var errs error
	for _, coin := range consts.SupportedCoins {
		points, err := s.data.DailyCloses(ctx, coin, maxPeriod)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("daily closes %s: %w", coin, err))
			continue
		}
		closes := make([]float64, len(points))
		for i := range points {
			closes[i] = points[i].Price
		}
		now := time.Now()
		for _, p := range consts.MovingAveragePeriods {
			if len(closes) < p {
				continue
			}
			window := closes[len(closes)-p:]
			sum := 0.0
			for _, v := range window {
				sum += v
			}
			ma := &entity.MovingAverage{
				CoinSymbol:   coin,
				Days:         p,
				Value:        sum / float64(p),
				CalculatedAt: now,
			}
			if err := s.dao.MovingAverageUpsert(ctx, ma); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("upsert %s ma%d: %w", coin, p, err))
			}
		}
	}
	if err := s.dao.MovingAveragesCleanup(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("cleanup moving averages: %w", err))
	}
	return errs
}

func maxMovingAveragePeriod() int {
	max := 0
	for _, p := range consts.MovingAveragePeriods {
		if p > max {
			max = p
		}
	}
	return max
}
