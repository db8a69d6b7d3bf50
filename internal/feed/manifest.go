package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestEntry names one symbol's backing file after a manifest has been
// normalized, regardless of which schema it was written in.
type ManifestEntry struct {
	Symbol string
	Path   string
	Format string // "csv" or "parquet"
}

// rawManifest covers both schemas at once; fields absent from a given
// schema simply stay zero-valued.
type rawManifest struct {
	Version int    `yaml:"version"`
	Format  string `yaml:"format"`
	Files   []any  `yaml:"files"`
	Symbols []string `yaml:"symbols"`
	Path    string   `yaml:"path"`
}

// LoadManifest reads manifest.yaml at path and resolves it into a flat list
// of per-symbol files. Two schemas are accepted per spec §6:
//
//   - strict-v1: {version: 1, format: parquet, files: [{symbol, path}|"path"]}
//   - legacy:    {format: per_symbol_parquet, symbols: [...], path: ".../{symbol}..."}
func LoadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataError{Reason: fmt.Sprintf("reading manifest %s: %v", path, err)}
	}
	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &DataError{Reason: fmt.Sprintf("parsing manifest %s: %v", path, err)}
	}

	baseDir := filepath.Dir(path)

	if raw.Version == 1 {
		return loadStrictV1(raw, baseDir)
	}
	if raw.Format == "per_symbol_parquet" || raw.Path != "" {
		return loadLegacy(raw, baseDir)
	}
	return nil, &DataError{Reason: fmt.Sprintf("manifest %s: unrecognized schema (no version:1, no per_symbol_parquet path template)", path)}
}

func loadStrictV1(raw rawManifest, baseDir string) ([]ManifestEntry, error) {
	if len(raw.Files) == 0 {
		return nil, &DataError{Reason: "strict-v1 manifest has no files"}
	}
	format := raw.Format
	if format == "" {
		format = "parquet"
	}
	entries := make([]ManifestEntry, 0, len(raw.Files))
	for i, f := range raw.Files {
		switch v := f.(type) {
		case string:
			symbol := symbolFromFilename(v)
			entries = append(entries, ManifestEntry{Symbol: symbol, Path: resolvePath(baseDir, v), Format: format})
		case map[string]any:
			symbol, _ := v["symbol"].(string)
			p, _ := v["path"].(string)
			if symbol == "" || p == "" {
				return nil, &DataError{Reason: fmt.Sprintf("strict-v1 manifest files[%d]: missing symbol or path", i)}
			}
			entries = append(entries, ManifestEntry{Symbol: symbol, Path: resolvePath(baseDir, p), Format: format})
		default:
			return nil, &DataError{Reason: fmt.Sprintf("strict-v1 manifest files[%d]: unsupported entry type %T", i, f)}
		}
	}
	return entries, nil
}

func loadLegacy(raw rawManifest, baseDir string) ([]ManifestEntry, error) {
	if len(raw.Symbols) == 0 {
		return nil, &DataError{Reason: "legacy manifest has no symbols"}
	}
	if raw.Path == "" || !strings.Contains(raw.Path, "{symbol}") {
		return nil, &DataError{Reason: "legacy manifest path template missing {symbol} placeholder"}
	}
	entries := make([]ManifestEntry, 0, len(raw.Symbols))
	for _, sym := range raw.Symbols {
		p := strings.ReplaceAll(raw.Path, "{symbol}", sym)
		entries = append(entries, ManifestEntry{Symbol: sym, Path: resolvePath(baseDir, p), Format: "parquet"})
	}
	return entries, nil
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func symbolFromFilename(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OpenManifestEntry opens the appropriate Source implementation for an entry
// based on its resolved format.
func OpenManifestEntry(e ManifestEntry) (Source, error) {
	switch e.Format {
	case "csv":
		return NewCSVSource(e.Path, e.Symbol)
	case "parquet", "":
		return NewParquetSource(e.Path, e.Symbol)
	default:
		return nil, &DataError{Symbol: e.Symbol, Reason: fmt.Sprintf("unsupported manifest format %q", e.Format)}
	}
}
