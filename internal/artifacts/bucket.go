package artifacts

import (
	"sort"
	"strconv"

	"github.com/openquant/barsim/internal/engine"
)

// BucketRow is one row of performance_by_bucket.csv: trade count and mean
// net P&L realized within one calendar-month bucket, keyed by trade entry.
type BucketRow struct {
	Bucket    string
	NumTrades int
	EVNet     float64
}

// ComputePerformanceByBucket groups the closed-trade log into calendar-month
// buckets keyed by entry timestamp, reporting the mean net P&L (ev_net) per
// bucket. This is a supplemental breakdown beyond the headline
// performance.json: it lets a caller spot a single bad month inside an
// otherwise flat run without re-deriving it from trades.csv by hand.
func ComputePerformanceByBucket(res engine.Result) []BucketRow {
	order := []string{}
	seen := map[string]bool{}
	sumNet := map[string]float64{}
	count := map[string]int{}

	for _, t := range res.Trades {
		key := t.EntryTs.Format("2006-01")
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
		sumNet[key] += t.PnLNet
		count[key]++
	}

	sort.Strings(order)
	out := make([]BucketRow, 0, len(order))
	for _, key := range order {
		n := count[key]
		out = append(out, BucketRow{
			Bucket:    key,
			NumTrades: n,
			EVNet:     sumNet[key] / float64(n),
		})
	}
	return out
}

// WritePerformanceByBucketCSV writes the supplemental per-bucket breakdown.
func WritePerformanceByBucketCSV(dir string, rows []BucketRow) error {
	return writeCSV(dir, "performance_by_bucket.csv", []string{"bucket", "n_trades", "ev_net"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.Bucket, strconv.Itoa(r.NumTrades), fmtFloat(r.EVNet)}
	})
}
