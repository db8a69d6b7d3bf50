package config

import "fmt"

// Resolve loads and deep-merges the given overlays, then applies alias
// normalization and bounds validation per spec.md §4.1, producing the
// resolved configuration that becomes config_used.yaml.
func Resolve(overlays []Overlay) (*ResolvedConfig, error) {
	merged, err := MergeAll(overlays)
	if err != nil {
		return nil, err
	}
	return normalize(merged)
}

func normalize(m map[string]any) (*ResolvedConfig, error) {
	rc := &ResolvedConfig{}

	if v, ok, err := getFloat(m, "initial_capital"); err != nil {
		return nil, newConfigError("initial_capital", "%v", err)
	} else if ok {
		rc.InitialCapital = v
	} else {
		rc.InitialCapital = 10000
	}

	if v, ok, err := getFloat(m, "risk_free_rate"); err != nil {
		return nil, newConfigError("risk_free_rate", "%v", err)
	} else if ok {
		rc.RiskFreeRate = v
	}

	if err := normalizeExecution(m, rc); err != nil {
		return nil, err
	}
	if err := normalizeRisk(m, rc); err != nil {
		return nil, err
	}
	if err := normalizeData(m, rc); err != nil {
		return nil, err
	}
	if err := normalizeStrategy(m, rc); err != nil {
		return nil, err
	}
	if err := normalizeHTF(m, rc); err != nil {
		return nil, err
	}
	if err := normalizeBenchmark(m, rc); err != nil {
		return nil, err
	}
	if err := normalizeSummary(m, rc); err != nil {
		return nil, err
	}

	// HTF alias applies after both data and htf_resampler have their raw
	// presence determined, so it is handled last, against the merged map.
	if err := applyTimeframeAlias(m, rc); err != nil {
		return nil, err
	}

	return rc, nil
}

func normalizeExecution(m map[string]any, rc *ResolvedConfig) error {
	profile, hasProfile, err := getString(m, "execution", "profile")
	if err != nil {
		return newConfigError("execution.profile", "%v", err)
	}
	if !hasProfile {
		profile = "tier2"
	}
	switch profile {
	case "tier1", "tier2", "tier3", "custom":
	default:
		return newConfigError("execution.profile", "unknown profile %q", profile)
	}

	explicit := map[string]bool{}
	for _, k := range []string{"maker_fee", "taker_fee", "slippage_bps", "delay_bars", "spread_bps"} {
		if _, ok, _ := nestedOK(m, "execution", k); ok {
			explicit[k] = true
		}
	}

	rc.Execution.Profile = profile

	if profile == "custom" {
		for _, k := range []string{"maker_fee", "taker_fee", "slippage_bps", "delay_bars", "spread_bps"} {
			if !explicit[k] {
				return newConfigError("execution."+k, "profile=custom requires explicit %s", k)
			}
		}
		mf, _, _ := getFloat(m, "execution", "maker_fee")
		tf, _, _ := getFloat(m, "execution", "taker_fee")
		sb, _, _ := getFloat(m, "execution", "slippage_bps")
		db, _, _ := getInt(m, "execution", "delay_bars")
		spb, _, _ := getFloat(m, "execution", "spread_bps")
		rc.Execution.MakerFee, rc.Execution.TakerFee = mf, tf
		rc.Execution.SlippageBps, rc.Execution.SpreadBps = sb, spb
		rc.Execution.DelayBars = db
	} else {
		for k := range explicit {
			return newConfigError("execution."+k, "profile=%s is a preset; %s may not also be specified", profile, k)
		}
		preset := tierPresets[profile]
		rc.Execution.MakerFee = preset.MakerFee
		rc.Execution.TakerFee = preset.TakerFee
		rc.Execution.SlippageBps = preset.SlippageBps
		rc.Execution.SpreadBps = preset.SpreadBps
		rc.Execution.DelayBars = preset.DelayBars
	}

	intrabar, ok, err := getString(m, "execution", "intrabar_mode")
	if err != nil {
		return newConfigError("execution.intrabar_mode", "%v", err)
	}
	if !ok {
		intrabar = "worst_case"
	}
	switch intrabar {
	case "worst_case", "best_case", "midpoint":
	default:
		return newConfigError("execution.intrabar_mode", "unknown mode %q", intrabar)
	}
	rc.Execution.IntrabarMode = intrabar

	spreadMode, ok, err := getString(m, "execution", "spread_mode")
	if err != nil {
		return newConfigError("execution.spread_mode", "%v", err)
	}
	if !ok {
		spreadMode = "fixed_bps"
	}
	switch spreadMode {
	case "fixed_bps", "none":
	default:
		return newConfigError("execution.spread_mode", "unknown mode %q", spreadMode)
	}
	rc.Execution.SpreadMode = spreadMode
	return nil
}

// nestedOK is like getString/getFloat but reports mere presence regardless
// of type, used to detect "was this key specified at all" for the tier
// preset exclusivity check.
func nestedOK(m map[string]any, path ...string) (any, bool, error) {
	v, ok := nested(m, path)
	return v, ok, nil
}

func normalizeRisk(m map[string]any, rc *ResolvedConfig) error {
	legacy, hasLegacy, err := getString(m, "risk", "stop_resolution")
	if err != nil {
		return newConfigError("risk.stop_resolution", "%v", err)
	}

	mode, hasMode, err := getString(m, "risk", "stop_resolution_mode")
	if err != nil {
		return newConfigError("risk.stop_resolution_mode", "%v", err)
	}
	proxy, hasProxy, err := getBool(m, "risk", "allow_legacy_proxy")
	if err != nil {
		return newConfigError("risk.allow_legacy_proxy", "%v", err)
	}

	var impliedMode string
	var impliedProxy bool
	if hasLegacy {
		switch legacy {
		case "strict":
			impliedMode, impliedProxy = "strict", false
		case "allow_legacy_proxy":
			impliedMode, impliedProxy = "safe", true
		default:
			return newConfigError("risk.stop_resolution", "unknown legacy value %q", legacy)
		}
		if hasMode && mode != impliedMode {
			return newConfigError("risk.stop_resolution", "contradicts risk.stop_resolution_mode=%q", mode)
		}
		if hasProxy && proxy != impliedProxy {
			return newConfigError("risk.stop_resolution", "contradicts risk.allow_legacy_proxy=%v", proxy)
		}
		mode, proxy = impliedMode, impliedProxy
	} else {
		if !hasMode {
			mode = "safe"
		}
		if mode != "safe" && mode != "strict" {
			return newConfigError("risk.stop_resolution_mode", "unknown mode %q", mode)
		}
	}

	if mode == "strict" && proxy {
		return newConfigError("risk", "stop_resolution_mode=strict combined with allow_legacy_proxy=true is invalid")
	}

	rc.Risk.StopResolutionMode = mode
	rc.Risk.AllowLegacyProxy = proxy

	rPerTrade, ok, err := getFloat(m, "risk", "r_per_trade")
	if err != nil {
		return newConfigError("risk.r_per_trade", "%v", err)
	}
	if !ok {
		rPerTrade = 0.01
	}
	if rPerTrade <= 0 || rPerTrade > 1 {
		return newConfigError("risk.r_per_trade", "must be in (0,1], got %v", rPerTrade)
	}
	rc.Risk.RPerTrade = rPerTrade

	minStopPct, ok, err := getFloat(m, "risk", "min_stop_distance_pct")
	if err != nil {
		return newConfigError("risk.min_stop_distance_pct", "%v", err)
	}
	if !ok {
		minStopPct = 0
	}
	if minStopPct < 0 || minStopPct > 1 {
		return newConfigError("risk.min_stop_distance_pct", "must be in [0,1], got %v", minStopPct)
	}
	rc.Risk.MinStopDistancePct = minStopPct

	minStop, _, err := getFloat(m, "risk", "min_stop_distance")
	if err != nil {
		return newConfigError("risk.min_stop_distance", "%v", err)
	}
	rc.Risk.MinStopDistance = minStop

	maxNotional, ok, err := getFloat(m, "risk", "max_notional_pct_equity")
	if err != nil {
		return newConfigError("risk.max_notional_pct_equity", "%v", err)
	}
	if !ok {
		maxNotional = 10
	}
	if maxNotional <= 0 || maxNotional > 10 {
		return newConfigError("risk.max_notional_pct_equity", "must be in (0,10], got %v", maxNotional)
	}
	rc.Risk.MaxNotionalPctEquity = maxNotional

	maintMargin, ok, err := getFloat(m, "risk", "maintenance_free_margin_pct")
	if err != nil {
		return newConfigError("risk.maintenance_free_margin_pct", "%v", err)
	}
	if !ok {
		maintMargin = 0
	}
	if maintMargin < 0 || maintMargin > 1 {
		return newConfigError("risk.maintenance_free_margin_pct", "must be in [0,1], got %v", maintMargin)
	}
	rc.Risk.MaintenanceFreeMarginPct = maintMargin

	maxPositions, ok, err := getInt(m, "risk", "max_positions")
	if err != nil {
		return newConfigError("risk.max_positions", "%v", err)
	}
	if !ok {
		maxPositions = 10
	}
	rc.Risk.MaxPositions = maxPositions

	lot, ok, err := getFloat(m, "risk", "contract_lot")
	if err != nil {
		return newConfigError("risk.contract_lot", "%v", err)
	}
	if !ok {
		lot = 1e-8
	}
	rc.Risk.ContractLot = lot

	hybrid, ok, err := getString(m, "risk", "hybrid_policy")
	if err != nil {
		return newConfigError("risk.hybrid_policy", "%v", err)
	}
	if !ok {
		hybrid = "wider"
	}
	if hybrid != "wider" && hybrid != "tighter" {
		return newConfigError("risk.hybrid_policy", "unknown policy %q", hybrid)
	}
	rc.Risk.HybridPolicy = hybrid
	return nil
}

func normalizeData(m map[string]any, rc *ResolvedConfig) error {
	path, _, err := getString(m, "data", "path")
	if err != nil {
		return newConfigError("data.path", "%v", err)
	}
	rc.Data.Path = path

	subset, hasSubset, err := getStringSlice(m, "data", "symbols_subset")
	if err != nil {
		return newConfigError("data.symbols_subset", "%v", err)
	}
	alias, hasAlias, err := getStringSlice(m, "data", "symbols")
	if err != nil {
		return newConfigError("data.symbols", "%v", err)
	}
	switch {
	case hasSubset && hasAlias:
		if !stringSliceEqual(subset, alias) {
			return newConfigError("data.symbols", "conflicts with data.symbols_subset")
		}
		rc.Data.SymbolsSubset = subset
	case hasSubset:
		rc.Data.SymbolsSubset = subset
	case hasAlias:
		rc.Data.SymbolsSubset = alias
	}

	if v, ok, err := getInt(m, "data", "max_symbols"); err != nil {
		return newConfigError("data.max_symbols", "%v", err)
	} else if ok {
		rc.Data.MaxSymbols = v
	}

	if v, ok, err := getTime(m, "data", "date_range", "start"); err != nil {
		return newConfigError("data.date_range.start", "%v", err)
	} else if ok {
		rc.Data.DateRangeStart = &v
	}
	if v, ok, err := getTime(m, "data", "date_range", "end"); err != nil {
		return newConfigError("data.date_range.end", "%v", err)
	} else if ok {
		rc.Data.DateRangeEnd = &v
	}

	if v, ok, err := getInt(m, "data", "row_limit_per_symbol"); err != nil {
		return newConfigError("data.row_limit_per_symbol", "%v", err)
	} else if ok {
		rc.Data.RowLimitPerSymbol = v
	}

	if v, ok, err := getInt(m, "data", "chunksize"); err != nil {
		return newConfigError("data.chunksize", "%v", err)
	} else if ok {
		rc.Data.Chunksize = v
	} else {
		rc.Data.Chunksize = 10000
	}

	if v, ok, err := getString(m, "data", "timeframe"); err != nil {
		return newConfigError("data.timeframe", "%v", err)
	} else if ok {
		rc.Data.Timeframe = v
	}
	return nil
}

func normalizeStrategy(m map[string]any, rc *ResolvedConfig) error {
	name, _, err := getString(m, "strategy", "name")
	if err != nil {
		return newConfigError("strategy.name", "%v", err)
	}
	rc.Strategy.Name = name

	policy, ok, err := getString(m, "strategy", "signal_conflict_policy")
	if err != nil {
		return newConfigError("strategy.signal_conflict_policy", "%v", err)
	}
	if !ok {
		policy = "reject"
	}
	switch policy {
	case "reject", "first_wins", "last_wins", "net_out":
	default:
		return newConfigError("strategy.signal_conflict_policy", "unknown policy %q", policy)
	}
	rc.Strategy.SignalConflictPolicy = policy

	if params, ok := getMap(m, "strategy", "params"); ok {
		rc.Strategy.Params = params
	}
	return nil
}

func normalizeHTF(m map[string]any, rc *ResolvedConfig) error {
	tfs, ok, err := getStringSlice(m, "htf_resampler", "timeframes")
	if err != nil {
		return newConfigError("htf_resampler.timeframes", "%v", err)
	}
	if ok {
		rc.HTFResampler.Timeframes = tfs
	}
	strict, ok, err := getBool(m, "htf_resampler", "strict")
	if err != nil {
		return newConfigError("htf_resampler.strict", "%v", err)
	}
	if ok {
		rc.HTFResampler.Strict = strict
	}
	return nil
}

// applyTimeframeAlias implements: data.timeframe, if set, overrides
// htf_resampler.timeframes to a single-element list and enables strict=true
// if the resampler block was absent entirely from the merged overlays.
func applyTimeframeAlias(m map[string]any, rc *ResolvedConfig) error {
	if rc.Data.Timeframe == "" {
		return nil
	}
	_, resamplerBlockPresent := getMap(m, "htf_resampler")
	rc.HTFResampler.Timeframes = []string{rc.Data.Timeframe}
	if !resamplerBlockPresent {
		rc.HTFResampler.Strict = true
	}
	return nil
}

func normalizeBenchmark(m map[string]any, rc *ResolvedConfig) error {
	enabled, _, err := getBool(m, "benchmark", "enabled")
	if err != nil {
		return newConfigError("benchmark.enabled", "%v", err)
	}
	rc.Benchmark.Enabled = enabled
	sym, _, err := getString(m, "benchmark", "symbol")
	if err != nil {
		return newConfigError("benchmark.symbol", "%v", err)
	}
	rc.Benchmark.Symbol = sym
	if enabled && sym == "" {
		return fmt.Errorf("config error: benchmark.enabled requires benchmark.symbol")
	}
	return nil
}

func normalizeSummary(m map[string]any, rc *ResolvedConfig) error {
	enabled, _, err := getBool(m, "summary", "enabled")
	if err != nil {
		return newConfigError("summary.enabled", "%v", err)
	}
	rc.Summary.Enabled = enabled
	return nil
}
