package feed

import (
	"testing"
	"time"

	"github.com/openquant/barsim/internal/model"
)

func TestValidatedRejectsNonMonotonic(t *testing.T) {
	src := &sliceSource{symbol: "AAA", bars: []model.Bar{
		bar("AAA", 2, 1), bar("AAA", 1, 1),
	}}
	v := Validated(src)
	if _, _, err := v.Next(); err != nil {
		t.Fatalf("first bar should pass, got error %v", err)
	}
	if _, ok, err := v.Next(); err == nil || ok {
		t.Fatalf("expected a DataError for a non-monotonic timestamp, ok=%v err=%v", ok, err)
	}
}

func TestValidatedRejectsDuplicateTimestamp(t *testing.T) {
	src := &sliceSource{symbol: "AAA", bars: []model.Bar{
		bar("AAA", 1, 1), bar("AAA", 1, 1),
	}}
	v := Validated(src)
	v.Next()
	if _, ok, err := v.Next(); err == nil || ok {
		t.Fatalf("expected a DataError for a duplicate timestamp, ok=%v err=%v", ok, err)
	}
}

func TestValidatedRejectsInvalidBar(t *testing.T) {
	bad := bar("AAA", 1, 1)
	bad.High = -1
	src := &sliceSource{symbol: "AAA", bars: []model.Bar{bad}}
	v := Validated(src)
	if _, ok, err := v.Next(); err == nil || ok {
		t.Fatalf("expected a DataError for an OHLC-invalid bar, ok=%v err=%v", ok, err)
	}
}

func TestValidatedRejectsNonOneMinuteCadence(t *testing.T) {
	src := &sliceSource{symbol: "AAA", bars: []model.Bar{
		bar("AAA", 0, 1), bar("AAA", 5, 2),
	}}
	v := Validated(src)
	if _, _, err := v.Next(); err != nil {
		t.Fatalf("first bar should pass, got error %v", err)
	}
	if _, ok, err := v.Next(); err == nil || ok {
		t.Fatalf("expected a DataError for a 5-minute gap on a base feed, ok=%v err=%v", ok, err)
	}
}

func TestValidatedToleratesOvernightGapAtOneMinuteCadence(t *testing.T) {
	first := bar("AAA", 0, 1)
	second := bar("AAA", 0, 2)
	second.Ts = first.Ts.Add(20 * time.Hour)
	src := &sliceSource{symbol: "AAA", bars: []model.Bar{first, second}}
	v := Validated(src)
	for i := 0; i < 2; i++ {
		if _, ok, err := v.Next(); err != nil || !ok {
			t.Fatalf("row %d: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestValidatedPassesCleanStream(t *testing.T) {
	src := &sliceSource{symbol: "AAA", bars: []model.Bar{bar("AAA", 1, 1), bar("AAA", 2, 2)}}
	v := Validated(src)
	for i := 0; i < 2; i++ {
		if _, ok, err := v.Next(); err != nil || !ok {
			t.Fatalf("row %d: ok=%v err=%v", i, ok, err)
		}
	}
	if _, ok, err := v.Next(); err != nil || ok {
		t.Fatalf("expected exhaustion, ok=%v err=%v", ok, err)
	}
}
