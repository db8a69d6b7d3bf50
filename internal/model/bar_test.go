package model

import (
	"testing"
	"time"
)

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func validBar() Bar {
	return Bar{
		Ts: utc("2024-01-01T00:00:00Z"), Symbol: "AAA",
		Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100,
	}
}

func TestBarValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(b Bar) Bar
		wantErr bool
	}{
		{"valid", func(b Bar) Bar { return b }, false},
		{"non-utc", func(b Bar) Bar { b.Ts = b.Ts.Local(); return b }, true},
		{"low above min(open,close)", func(b Bar) Bar { b.Low = 10.4; return b }, true},
		{"high below max(open,close)", func(b Bar) Bar { b.High = 10.2; return b }, true},
		{"high below low", func(b Bar) Bar { b.High = 5; b.Low = 9; return b }, true},
		{"negative volume", func(b Bar) Bar { b.Volume = -1; return b }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.mutate(validBar()).Validate()
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestSideOppositeAndSign(t *testing.T) {
	if Buy.Opposite() != Sell {
		t.Fatalf("Buy.Opposite() = %v, want Sell", Buy.Opposite())
	}
	if Sell.Opposite() != Buy {
		t.Fatalf("Sell.Opposite() = %v, want Buy", Sell.Opposite())
	}
	if Buy.SignBuyPositive() != 1 {
		t.Fatalf("Buy.SignBuyPositive() = %v, want 1", Buy.SignBuyPositive())
	}
	if Sell.SignBuyPositive() != -1 {
		t.Fatalf("Sell.SignBuyPositive() = %v, want -1", Sell.SignBuyPositive())
	}
}

func TestSignalIsExit(t *testing.T) {
	cases := []struct {
		name string
		sig  Signal
		want bool
	}{
		{"suffix _exit", Signal{SignalType: "sma_exit"}, true},
		{"metadata is_exit", Signal{Metadata: map[string]any{"is_exit": true}}, true},
		{"metadata reduce_only", Signal{Metadata: map[string]any{"reduce_only": true}}, true},
		{"plain entry", Signal{SignalType: "sma_cross"}, false},
		{"false is_exit", Signal{Metadata: map[string]any{"is_exit": false}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.sig.IsExit(); got != c.want {
				t.Fatalf("IsExit() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestSignalStopHints(t *testing.T) {
	sig := Signal{Metadata: map[string]any{
		"stop_price": 99.5,
		"stop_spec":  map[string]any{"kind": "atr"},
	}}
	price, ok := sig.StopPriceHint()
	if !ok || price != 99.5 {
		t.Fatalf("StopPriceHint() = (%v, %v), want (99.5, true)", price, ok)
	}
	spec, ok := sig.StopSpecHint()
	if !ok || spec["kind"] != "atr" {
		t.Fatalf("StopSpecHint() = (%v, %v)", spec, ok)
	}

	empty := Signal{}
	if _, ok := empty.StopPriceHint(); ok {
		t.Fatalf("StopPriceHint() on empty signal should be absent")
	}
	if _, ok := empty.StopSpecHint(); ok {
		t.Fatalf("StopSpecHint() on empty signal should be absent")
	}
}
