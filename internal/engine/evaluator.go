package engine

// Trigger 表示一次扫描对单个挂单的判定结果
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerStopLoss
	TriggerTrailingStop
)

func (t Trigger) String() string {
	switch t {
	case TriggerStopLoss:
		return "Stop Loss"
	case TriggerTrailingStop:
		return "Trailing Stop"
	default:
		return ""
	}
}

// Evaluate 按优先级判定触发条件：固定止损先于移动止损，命中即返回。
//
// 固定止损：currentPrice <= *stopLimit。
// 移动止损：currentPrice <= highestPrice * (1 - *trailingPct/100)。
// trailingPct 为 0 时阈值等于最高价本身，首个不高于最高价的报价即触发，
// 包括第一次观察（此时 highestPrice == currentPrice）。
func Evaluate(stopLimit, trailingPct *float64, currentPrice, highestPrice float64) Trigger {
	if stopLimit != nil && currentPrice <= *stopLimit {
		return TriggerStopLoss
	}
	if trailingPct != nil {
		threshold := highestPrice * (1 - *trailingPct/100)
		if currentPrice <= threshold {
			return TriggerTrailingStop
		}
	}
	return TriggerNone
}
