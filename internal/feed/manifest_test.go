package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp manifest: %v", err)
	}
	return path
}

func TestLoadManifestStrictV1(t *testing.T) {
	path := writeTempManifest(t, `
version: 1
format: csv
files:
  - symbol: AAA
    path: aaa.csv
  - bbb.csv
`)
	entries, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Symbol != "AAA" || entries[0].Format != "csv" {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Symbol != "bbb" {
		t.Fatalf("entries[1].Symbol = %v, want bbb (derived from filename)", entries[1].Symbol)
	}
}

func TestLoadManifestLegacy(t *testing.T) {
	path := writeTempManifest(t, `
format: per_symbol_parquet
symbols: [AAA, BBB]
path: data/{symbol}.parquet
`)
	entries, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Format != "parquet" {
		t.Fatalf("legacy manifest entries must default to parquet format, got %v", entries[0].Format)
	}
	wantSuffix := filepath.Join(filepath.Dir(path), "data", "AAA.parquet")
	if entries[0].Path != wantSuffix {
		t.Fatalf("entries[0].Path = %v, want %v", entries[0].Path, wantSuffix)
	}
}

func TestLoadManifestLegacyRequiresSymbolPlaceholder(t *testing.T) {
	path := writeTempManifest(t, `
format: per_symbol_parquet
symbols: [AAA]
path: data/all.parquet
`)
	_, err := LoadManifest(path)
	if err == nil {
		t.Fatalf("expected an error: legacy manifest path must contain {symbol}")
	}
}

func TestLoadManifestUnrecognizedSchema(t *testing.T) {
	path := writeTempManifest(t, "foo: bar\n")
	_, err := LoadManifest(path)
	if err == nil {
		t.Fatalf("expected an error for an unrecognized manifest schema")
	}
}
