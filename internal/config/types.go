// Package config resolves the layered YAML configuration overlays that
// drive a backtest run into one normalized, bounds-checked ResolvedConfig,
// following the same viper-for-parsing/yaml.v3-for-persistence pattern the
// rest of this codebase's config layer was built on.
package config

import "time"

// ExecutionConfig is the normalized execution.* block.
type ExecutionConfig struct {
	Profile      string  `yaml:"profile"`
	MakerFee     float64 `yaml:"maker_fee"`
	TakerFee     float64 `yaml:"taker_fee"`
	SlippageBps  float64 `yaml:"slippage_bps"`
	SpreadBps    float64 `yaml:"spread_bps"`
	DelayBars    int     `yaml:"delay_bars"`
	IntrabarMode string  `yaml:"intrabar_mode"` // worst_case | best_case | midpoint
	SpreadMode   string  `yaml:"spread_mode"`   // fixed_bps | none
}

// RiskConfig is the normalized risk.* block.
type RiskConfig struct {
	StopResolutionMode       string  `yaml:"stop_resolution_mode"` // safe | strict
	AllowLegacyProxy         bool    `yaml:"allow_legacy_proxy"`
	RPerTrade                float64 `yaml:"r_per_trade"`
	MinStopDistance          float64 `yaml:"min_stop_distance"`
	MinStopDistancePct       float64 `yaml:"min_stop_distance_pct"`
	MaxNotionalPctEquity     float64 `yaml:"max_notional_pct_equity"`
	MaintenanceFreeMarginPct float64 `yaml:"maintenance_free_margin_pct"`
	MaxPositions             int     `yaml:"max_positions"`
	ContractLot              float64 `yaml:"contract_lot"`
	HybridPolicy             string  `yaml:"hybrid_policy"` // wider | tighter, global default
}

// DataConfig is the normalized data.* block.
type DataConfig struct {
	Path              string     `yaml:"path"`
	SymbolsSubset     []string   `yaml:"symbols_subset"`
	MaxSymbols        int        `yaml:"max_symbols"`
	DateRangeStart    *time.Time `yaml:"date_range_start,omitempty"`
	DateRangeEnd      *time.Time `yaml:"date_range_end,omitempty"`
	RowLimitPerSymbol int        `yaml:"row_limit_per_symbol"`
	Chunksize         int        `yaml:"chunksize"`
	Timeframe         string     `yaml:"timeframe,omitempty"`
}

// StrategyConfig is the normalized strategy.* block.
type StrategyConfig struct {
	Name                 string         `yaml:"name"`
	SignalConflictPolicy string         `yaml:"signal_conflict_policy"` // reject|first_wins|last_wins|net_out
	Params               map[string]any `yaml:"params,omitempty"`
}

// HTFResamplerConfig is the normalized htf_resampler.* block.
type HTFResamplerConfig struct {
	Timeframes []string `yaml:"timeframes"`
	Strict     bool     `yaml:"strict"`
}

// BenchmarkConfig is the normalized benchmark.* block.
type BenchmarkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Symbol  string `yaml:"symbol,omitempty"`
}

// SummaryConfig controls the optional summary.txt writer.
type SummaryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ResolvedConfig is the fully merged, normalized, bounds-checked
// configuration tree — the single source of truth written verbatim to
// config_used.yaml before the engine starts.
type ResolvedConfig struct {
	InitialCapital float64            `yaml:"initial_capital"`
	RiskFreeRate   float64            `yaml:"risk_free_rate"`
	Execution      ExecutionConfig    `yaml:"execution"`
	Risk           RiskConfig         `yaml:"risk"`
	Data           DataConfig         `yaml:"data"`
	Strategy       StrategyConfig     `yaml:"strategy"`
	HTFResampler   HTFResamplerConfig `yaml:"htf_resampler"`
	Benchmark      BenchmarkConfig    `yaml:"benchmark"`
	Summary        SummaryConfig      `yaml:"summary"`
}

// tierPreset is a fixed (maker_fee, taker_fee, slippage_bps, spread_bps,
// delay_bars) bundle for execution.profile in {tier1, tier2, tier3}.
type tierPreset struct {
	MakerFee    float64
	TakerFee    float64
	SlippageBps float64
	SpreadBps   float64
	DelayBars   int
}

var tierPresets = map[string]tierPreset{
	"tier1": {MakerFee: 0.0, TakerFee: 0.0004, SlippageBps: 0.5, SpreadBps: 0.0, DelayBars: 0},
	"tier2": {MakerFee: 0.0, TakerFee: 0.0006, SlippageBps: 2.0, SpreadBps: 1.0, DelayBars: 1},
	"tier3": {MakerFee: 0.0, TakerFee: 0.0008, SlippageBps: 5.0, SpreadBps: 3.0, DelayBars: 1},
}
