// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docpress/pkg/types"
)

// WriteReport writes the outcome, including its ordered attempt log, as a
// YAML sidecar in dir. The file is named after the source document; a
// repeated conversion overwrites the previous report. Returns the report
// path.
func WriteReport(outcome *types.ConversionOutcome, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(outcome.Source), filepath.Ext(outcome.Source))
	path := filepath.Join(dir, base+".report.yaml")

	data, err := yaml.Marshal(outcome)
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
