package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openquant/barsim/internal/config"
)

func TestIsScoped(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.DataConfig
		want bool
	}{
		{"unconfigured", config.DataConfig{}, false},
		{"symbols subset", config.DataConfig{SymbolsSubset: []string{"AAA"}}, true},
		{"max symbols", config.DataConfig{MaxSymbols: 5}, true},
		{"row limit", config.DataConfig{RowLimitPerSymbol: 100}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsScoped(c.cfg); got != c.want {
				t.Fatalf("IsScoped() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestBuildDataScopeFormatsDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := config.DataConfig{SymbolsSubset: []string{"AAA"}, DateRangeStart: &start}
	ds := BuildDataScope(cfg)
	if ds.DateRangeStart == "" {
		t.Fatalf("DateRangeStart should be formatted, got empty string")
	}
	if ds.DateRangeEnd != "" {
		t.Fatalf("DateRangeEnd = %q, want empty when unset", ds.DateRangeEnd)
	}
	if len(ds.SymbolsSubset) != 1 || ds.SymbolsSubset[0] != "AAA" {
		t.Fatalf("SymbolsSubset = %v, want [AAA]", ds.SymbolsSubset)
	}
}

func TestWriteDataScopeJSON(t *testing.T) {
	dir := t.TempDir()
	ds := DataScope{MaxSymbols: 3}
	if err := WriteDataScopeJSON(dir, ds); err != nil {
		t.Fatalf("WriteDataScopeJSON() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "data_scope.json"))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var got DataScope
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.MaxSymbols != 3 {
		t.Fatalf("MaxSymbols = %d, want 3", got.MaxSymbols)
	}
}
