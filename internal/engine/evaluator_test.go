package engine

import "testing"

func fp(v float64) *float64 { return &v }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		stopLimit   *float64
		trailingPct *float64
		current     float64
		highest     float64
		want        Trigger
	}{
		{name: "no conditions", current: 100, highest: 120, want: TriggerNone},
		{name: "stop limit above current", stopLimit: fp(40000), current: 39900, highest: 41000, want: TriggerStopLoss},
		{name: "stop limit equals current", stopLimit: fp(40000), current: 40000, highest: 41000, want: TriggerStopLoss},
		{name: "stop limit below current", stopLimit: fp(40000), current: 40001, highest: 41000, want: TriggerNone},
		{name: "trailing within band", trailingPct: fp(5), current: 105, highest: 110, want: TriggerNone},
		{name: "trailing at threshold", trailingPct: fp(5), current: 104.5, highest: 110, want: TriggerTrailingStop},
		{name: "trailing below threshold", trailingPct: fp(5), current: 104, highest: 110, want: TriggerTrailingStop},
		{name: "zero pct first observation", trailingPct: fp(0), current: 100, highest: 100, want: TriggerTrailingStop},
		{name: "zero pct after rise", trailingPct: fp(0), current: 101, highest: 100.5, want: TriggerNone},
		{name: "stop loss wins over trailing", stopLimit: fp(40000), trailingPct: fp(0), current: 39000, highest: 41000, want: TriggerStopLoss},
		{name: "trailing checked when stop not hit", stopLimit: fp(30000), trailingPct: fp(5), current: 38000, highest: 41000, want: TriggerTrailingStop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.stopLimit, tt.trailingPct, tt.current, tt.highest)
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriggerString(t *testing.T) {
	if TriggerStopLoss.String() != "Stop Loss" {
		t.Errorf("TriggerStopLoss.String() = %q", TriggerStopLoss.String())
	}
	if TriggerTrailingStop.String() != "Trailing Stop" {
		t.Errorf("TriggerTrailingStop.String() = %q", TriggerTrailingStop.String())
	}
	if TriggerNone.String() != "" {
		t.Errorf("TriggerNone.String() = %q", TriggerNone.String())
	}
}
