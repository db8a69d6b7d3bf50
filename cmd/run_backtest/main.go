// Command run_backtest drives one event-driven, bar-by-bar backtest run
// from a manifest.yaml or a single CSV/Parquet file and a layered set of config
// overlays, writing every artifact the run produces to its output
// directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openquant/barsim/internal/artifacts"
	"github.com/openquant/barsim/internal/config"
	"github.com/openquant/barsim/internal/engine"
	"github.com/openquant/barsim/internal/feed"
	"github.com/openquant/barsim/internal/model"
	"github.com/openquant/barsim/internal/strategy"
	"github.com/openquant/barsim/internal/strategy/examples"
)

var (
	dataPath    string
	configPath  string
	overrides   []string
	localConfig string
	outDir      string
)

func main() {
	root := &cobra.Command{
		Use:   "run_backtest",
		Short: "Run a single event-driven backtest over a local dataset",
		RunE:  run,
	}
	root.Flags().StringVar(&dataPath, "data", "", "path to a manifest.yaml or a single CSV/Parquet dataset")
	root.Flags().StringVar(&configPath, "config", "", "base config overlay (required)")
	root.Flags().StringArrayVar(&overrides, "override", nil, "additional config overlay, layered on top of --config in order given (repeatable)")
	root.Flags().StringVar(&localConfig, "local-config", "", "highest-precedence config overlay, applied last")
	root.Flags().StringVar(&outDir, "out", "./run", "output directory for run artifacts")
	_ = root.MarkFlagRequired("config")
	_ = root.MarkFlagRequired("data")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	runID := artifacts.NewRunID()

	overlays, err := loadOverlays()
	if err != nil {
		return fail(runID, "ConfigError", err)
	}

	rc, err := config.Resolve(overlays)
	if err != nil {
		return fail(runID, "ConfigError", err)
	}

	if err := config.WriteUsed(rc, outDir); err != nil {
		return fail(runID, "ConfigError", err)
	}

	sources, err := buildSources(rc)
	if err != nil {
		return fail(runID, "DataError", err)
	}

	f, err := feed.NewFeed(sources)
	if err != nil {
		return fail(runID, "DataError", err)
	}

	strategies := builtinStrategies(rc)

	eng := engine.New(rc, f, strategies, feed.BaseInterval)
	res, err := eng.Run()
	if err != nil {
		return fail(runID, "ExecutionError", err)
	}

	perf := artifacts.ComputePerformance(res, rc.InitialCapital, rc.RiskFreeRate)

	if err := writeAllArtifacts(rc, res, perf, runID); err != nil {
		return fail(runID, "PortfolioError", err)
	}

	if rc.Benchmark.Enabled {
		if err := writeBenchmarkArtifacts(rc, res); err != nil {
			return fail(runID, "DataError", err)
		}
	}

	fmt.Printf("run %s complete: final_equity=%.2f trades=%d\n", runID, perf.FinalEquity, perf.TotalTrades)
	return nil
}

func loadOverlays() ([]config.Overlay, error) {
	var overlays []config.Overlay
	base, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading --config %s: %w", configPath, err)
	}
	overlays = append(overlays, config.Overlay{Name: configPath, YAML: base})

	for _, p := range overrides {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading --override %s: %w", p, err)
		}
		overlays = append(overlays, config.Overlay{Name: p, YAML: data})
	}

	if localConfig != "" {
		data, err := os.ReadFile(localConfig)
		if err != nil {
			return nil, fmt.Errorf("reading --local-config %s: %w", localConfig, err)
		}
		overlays = append(overlays, config.Overlay{Name: localConfig, YAML: data})
	}
	return overlays, nil
}

func buildSources(rc *config.ResolvedConfig) ([]feed.Source, error) {
	path := dataPath
	if path == "" {
		path = rc.Data.Path
	}

	var entries []feed.ManifestEntry
	if filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml" {
		var err error
		entries, err = feed.LoadManifest(path)
		if err != nil {
			return nil, err
		}
	} else {
		entries = []feed.ManifestEntry{{Symbol: defaultSymbol(rc), Path: path, Format: formatFromExt(path)}}
	}

	entries = feed.ScopeSymbols(entries, rc.Data)

	// Opening and validating each per-symbol source is I/O bound and
	// independent across symbols; errgroup fans that out before the
	// single-threaded merge begins. The simulation loop itself never runs
	// more than one goroutine — this concurrency is confined entirely to
	// pre-loop dataset preparation.
	sources := make([]feed.Source, len(entries))
	var g errgroup.Group
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			src, err := feed.OpenManifestEntry(e)
			if err != nil {
				return err
			}
			sources[i] = feed.Validated(feed.Scoped(src, rc.Data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

func defaultSymbol(rc *config.ResolvedConfig) string {
	if len(rc.Data.SymbolsSubset) > 0 {
		return rc.Data.SymbolsSubset[0]
	}
	return "UNKNOWN"
}

func formatFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".parquet":
		return "parquet"
	default:
		return "csv"
	}
}

func builtinStrategies(rc *config.ResolvedConfig) []strategy.Strategy {
	symbols := rc.Data.SymbolsSubset
	if len(symbols) == 0 {
		symbols = []string{defaultSymbol(rc)}
	}
	var strategies []strategy.Strategy
	for _, sym := range symbols {
		switch rc.Strategy.Name {
		case "atr_breakout":
			strategies = append(strategies, examples.NewATRBreakout(sym, 20, 14, 2.0))
		default:
			strategies = append(strategies, examples.NewSMACrossover(sym, 20, 50))
		}
	}
	return strategies
}

func writeAllArtifacts(rc *config.ResolvedConfig, res engine.Result, perf artifacts.Performance, runID string) error {
	if err := artifacts.WriteEquityCSV(outDir, res.Equity); err != nil {
		return err
	}
	if err := artifacts.WriteTradesCSV(outDir, res.Trades); err != nil {
		return err
	}
	if err := artifacts.WriteFillsJSONL(outDir, res.Fills); err != nil {
		return err
	}
	if err := artifacts.WriteDecisionsJSONL(outDir, res.Decisions); err != nil {
		return err
	}
	if err := artifacts.WritePerformanceJSON(outDir, perf); err != nil {
		return err
	}
	if err := artifacts.WritePerformanceByBucketCSV(outDir, artifacts.ComputePerformanceByBucket(res)); err != nil {
		return err
	}
	if rc.Summary.Enabled {
		if err := artifacts.WriteSummaryText(outDir, perf, res); err != nil {
			return err
		}
	}
	if artifacts.IsScoped(rc.Data) {
		if err := artifacts.WriteDataScopeJSON(outDir, artifacts.BuildDataScope(rc.Data)); err != nil {
			return err
		}
	}
	return artifacts.WriteRunStatusOK(outDir, runID, rc.Execution.Profile, rc.Execution.SpreadMode, rc.Execution.IntrabarMode, rc.Risk.StopResolutionMode, res)
}

// writeBenchmarkArtifacts drains a standalone source for the configured
// benchmark symbol and writes the buy-and-hold comparison files. It
// re-resolves the dataset's manifest entries rather than reusing the
// strategy run's sources, since those are already exhausted by the time
// the engine finishes.
func writeBenchmarkArtifacts(rc *config.ResolvedConfig, res engine.Result) error {
	path := dataPath
	if path == "" {
		path = rc.Data.Path
	}

	var entry feed.ManifestEntry
	if filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml" {
		entries, err := feed.LoadManifest(path)
		if err != nil {
			return err
		}
		found := false
		for _, e := range entries {
			if e.Symbol == rc.Benchmark.Symbol {
				entry, found = e, true
				break
			}
		}
		if !found {
			return fmt.Errorf("benchmark symbol %q not found in manifest %s", rc.Benchmark.Symbol, path)
		}
	} else {
		entry = feed.ManifestEntry{Symbol: rc.Benchmark.Symbol, Path: path, Format: formatFromExt(path)}
	}

	src, err := feed.OpenManifestEntry(entry)
	if err != nil {
		return err
	}
	src = feed.Validated(src)

	var bars []model.Bar
	for {
		bar, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		bars = append(bars, bar)
	}

	equity := artifacts.BuildBuyAndHold(bars, rc.InitialCapital)
	if err := artifacts.WriteBenchmarkEquityCSV(outDir, equity); err != nil {
		return err
	}
	return artifacts.WriteBenchmarkSummaryText(outDir, res, equity)
}

func fail(runID, errType string, err error) error {
	_ = artifacts.WriteRunStatusFail(outDir, runID, errType, err.Error())
	return fmt.Errorf("%s: %w", errType, err)
}
