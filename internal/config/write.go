package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteUsed writes the resolved config to <dir>/config_used.yaml, mirroring
// the teacher's SaveToFile atomic-enough write (MkdirAll + single WriteFile).
func WriteUsed(rc *ResolvedConfig, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create run directory %s: %w", dir, err)
	}
	data, err := yaml.Marshal(rc)
	if err != nil {
		return fmt.Errorf("failed to marshal resolved config: %w", err)
	}
	path := filepath.Join(dir, "config_used.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
