package engine

import (
	"fmt"
	"sync"
)

// Watermarks 记录每个(user, coin)观察到的最高价，移动止损以它为基准。
// 只存在进程内存里：重启后从下一次观察的价格重新起算，移动止损的
// 有效区间会短暂变宽。这是沿用的已知简化，不做持久化。
type Watermarks interface {
	// Observe 更新并返回该仓位的最高观察价，单调不减
	Observe(userID int64, symbol string, price float64) float64
	// Reset 清空全部水位，仅测试和重启语义用
	Reset()
}

type memWatermarks struct {
	mu    sync.Mutex
	highs map[string]float64
}

func NewWatermarks() Watermarks {
	return &memWatermarks{highs: make(map[string]float64)}
}

func (m *memWatermarks) Observe(userID int64, symbol string, price float64) float64 {
	key := fmt.Sprintf("%d_%s", userID, symbol)
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.highs[key]; !ok || price > cur {
		m.highs[key] = price
	}
	return m.highs[key]
}

func (m *memWatermarks) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highs = make(map[string]float64)
}
