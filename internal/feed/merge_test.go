package feed

import (
	"testing"
	"time"

	"github.com/openquant/barsim/internal/model"
)

type sliceSource struct {
	symbol string
	bars   []model.Bar
	pos    int
}

func (s *sliceSource) Symbol() string { return s.symbol }
func (s *sliceSource) Next() (model.Bar, bool, error) {
	if s.pos >= len(s.bars) {
		return model.Bar{}, false, nil
	}
	b := s.bars[s.pos]
	s.pos++
	return b, true, nil
}
func (s *sliceSource) Reset() error { s.pos = 0; return nil }

func bar(sym string, minute int, close float64) model.Bar {
	ts := time.Date(2024, 1, 1, 0, minute, 0, 0, time.UTC)
	return model.Bar{Ts: ts, Symbol: sym, Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func TestFeedMergesAlignedTicks(t *testing.T) {
	a := &sliceSource{symbol: "AAA", bars: []model.Bar{bar("AAA", 0, 1), bar("AAA", 1, 2)}}
	b := &sliceSource{symbol: "BBB", bars: []model.Bar{bar("BBB", 0, 10), bar("BBB", 2, 11)}}

	f, err := NewFeed([]Source{a, b})
	if err != nil {
		t.Fatalf("NewFeed() error = %v", err)
	}

	tick1, ok, err := f.Next()
	if err != nil || !ok {
		t.Fatalf("tick1: ok=%v err=%v", ok, err)
	}
	if len(tick1.Bars) != 2 {
		t.Fatalf("tick1 should align both symbols at minute 0, got %+v", tick1.Bars)
	}

	tick2, ok, err := f.Next()
	if err != nil || !ok {
		t.Fatalf("tick2: ok=%v err=%v", ok, err)
	}
	if len(tick2.Bars) != 1 {
		t.Fatalf("tick2 should carry only AAA at minute 1, got %+v", tick2.Bars)
	}
	if _, hasAAA := tick2.Bars["AAA"]; !hasAAA {
		t.Fatalf("tick2 missing AAA")
	}

	tick3, ok, err := f.Next()
	if err != nil || !ok {
		t.Fatalf("tick3: ok=%v err=%v", ok, err)
	}
	if _, hasBBB := tick3.Bars["BBB"]; !hasBBB {
		t.Fatalf("tick3 missing BBB at minute 2")
	}

	_, ok, err = f.Next()
	if err != nil || ok {
		t.Fatalf("expected exhaustion, got ok=%v err=%v", ok, err)
	}
}
