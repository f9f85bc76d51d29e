package engine

import (
	"sync"
	"testing"
)

func TestWatermarksMonotonic(t *testing.T) {
	m := NewWatermarks()
	if got := m.Observe(1, "BTC", 41000); got != 41000 {
		t.Fatalf("first observation = %v, want 41000", got)
	}
	if got := m.Observe(1, "BTC", 42000); got != 42000 {
		t.Fatalf("rising observation = %v, want 42000", got)
	}
	if got := m.Observe(1, "BTC", 39000); got != 42000 {
		t.Fatalf("falling observation = %v, want kept high 42000", got)
	}
}

func TestWatermarksKeyedPerUserAndCoin(t *testing.T) {
	m := NewWatermarks()
	m.Observe(1, "BTC", 41000)
	if got := m.Observe(2, "BTC", 100); got != 100 {
		t.Errorf("other user shares watermark: got %v", got)
	}
	if got := m.Observe(1, "ETH", 2000); got != 2000 {
		t.Errorf("other coin shares watermark: got %v", got)
	}
}

func TestWatermarksReset(t *testing.T) {
	m := NewWatermarks()
	m.Observe(1, "BTC", 42000)
	m.Reset()
	if got := m.Observe(1, "BTC", 100); got != 100 {
		t.Errorf("Observe after Reset = %v, want 100", got)
	}
}

func TestWatermarksConcurrentObserve(t *testing.T) {
	m := NewWatermarks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			m.Observe(1, "BTC", p)
		}(float64(i))
	}
	wg.Wait()
	if got := m.Observe(1, "BTC", 0); got != 49 {
		t.Errorf("high after concurrent observes = %v, want 49", got)
	}
}
