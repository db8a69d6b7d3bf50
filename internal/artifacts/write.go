package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openquant/barsim/internal/engine"
	"github.com/openquant/barsim/internal/model"
)

// WriteEquityCSV writes the equity curve as ts,equity,cash rows.
func WriteEquityCSV(dir string, rows []engine.EquityRow) error {
	return writeCSV(dir, "equity.csv", []string{"ts", "equity", "cash"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.Ts.Format(time.RFC3339), fmtFloat(r.Equity), fmtFloat(r.Cash)}
	})
}

// WriteTradesCSV writes the closed-trade log. The column set follows
// spec §6's stable list verbatim, including the legacy pnl/fees/slippage
// aliases alongside their pnl_price/fees_paid/pnl_net successors — old
// provenance columns are never dropped even once a richer field exists.
func WriteTradesCSV(dir string, trades []model.Trade) error {
	header := []string{
		"entry_ts", "exit_ts", "symbol", "side", "qty", "entry_price", "exit_price",
		"pnl", "pnl_price", "fees_paid", "pnl_net", "fees", "slippage", "mae_price", "mfe_price",
		"risk_amount", "stop_distance", "r_multiple_gross", "r_multiple_net",
	}
	return writeCSV(dir, "trades.csv", header, len(trades), func(i int) []string {
		t := trades[i]
		return []string{
			t.EntryTs.Format(time.RFC3339), t.ExitTs.Format(time.RFC3339), t.Symbol, string(t.Side),
			fmtFloat(t.Qty), fmtFloat(t.EntryPrice), fmtFloat(t.ExitPrice),
			fmtFloat(t.PnLPrice), fmtFloat(t.PnLPrice), fmtFloat(t.FeesPaid), fmtFloat(t.PnLNet),
			fmtFloat(t.FeesPaid), fmtFloat(t.SlippagePaid),
			fmtFloat(t.MAEPrice), fmtFloat(t.MFEPrice),
			fmtPtr(t.RiskAmount), fmtPtr(t.StopDistance), fmtPtr(t.RMultipleGross), fmtPtr(t.RMultipleNet),
		}
	})
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func fmtPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return fmtFloat(*f)
}

func writeCSV(dir, name string, header []string, n int, row func(i int) []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteFillsJSONL writes one JSON object per line, one per fill.
func WriteFillsJSONL(dir string, fills []model.Fill) error {
	return writeJSONL(dir, "fills.jsonl", len(fills), func(i int) any { return fills[i] })
}

// WriteDecisionsJSONL writes one JSON object per line, one per decision
// (both accepted and rejected signals, per the "always recorded" contract).
func WriteDecisionsJSONL(dir string, decisions []model.Decision) error {
	return writeJSONL(dir, "decisions.jsonl", len(decisions), func(i int) any { return decisions[i] })
}

func writeJSONL(dir, name string, n int, row func(i int) any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i := 0; i < n; i++ {
		if err := enc.Encode(row(i)); err != nil {
			return fmt.Errorf("encoding %s row %d: %w", name, i, err)
		}
	}
	return nil
}

// WritePerformanceJSON writes performance.json.
func WritePerformanceJSON(dir string, perf Performance) error {
	return writeJSON(dir, "performance.json", perf)
}

// RunStatus is the contents of run_status.json, written on both success and
// failure so a caller always has a terminal record of what happened.
type RunStatus struct {
	SchemaVersion        int            `json:"schema_version"`
	RunID                string         `json:"run_id"`
	Status               string         `json:"status"` // OK | FAIL
	ErrorType            string         `json:"error_type,omitempty"`
	ErrorMessage         string         `json:"error_message,omitempty"`
	ExecutionProfile     string         `json:"execution_profile"`
	SpreadMode           string         `json:"spread_mode"`
	IntrabarMode         string         `json:"intrabar_mode"`
	StopResolutionMode   string         `json:"stop_resolution"`
	UsedLegacyStopProxy  bool           `json:"used_legacy_stop_proxy"`
	RMetricsValid        bool           `json:"r_metrics_valid"`
	StopResolutionCounts map[string]int `json:"stop_resolution_counts"`
	Notes                []string       `json:"notes,omitempty"`
}

// NewRunID generates a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// WriteRunStatusOK writes run_status.json for a successful run.
func WriteRunStatusOK(dir, runID, executionProfile, spreadMode, intrabarMode, stopMode string, res engine.Result) error {
	status := RunStatus{
		SchemaVersion:        1,
		RunID:                runID,
		Status:               "OK",
		ExecutionProfile:     executionProfile,
		SpreadMode:           spreadMode,
		IntrabarMode:         intrabarMode,
		StopResolutionMode:   stopMode,
		UsedLegacyStopProxy:  res.UsedLegacyStopProxy,
		RMetricsValid:        res.RMetricsValid,
		StopResolutionCounts: res.StopResolutionCounts,
	}
	return writeJSON(dir, "run_status.json", status)
}

// WriteRunStatusFail writes a best-effort run_status.json after a fatal
// error, so a failed run still leaves a terminal record behind.
func WriteRunStatusFail(dir, runID, errType, errMsg string) error {
	status := RunStatus{
		SchemaVersion: 1,
		RunID:         runID,
		Status:        "FAIL",
		ErrorType:     errType,
		ErrorMessage:  errMsg,
	}
	return writeJSON(dir, "run_status.json", status)
}

func writeJSON(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
