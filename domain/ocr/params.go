package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// InitParams are tesseract parameters that only take effect at engine init:
// LSTM-only recognition and the word confidence floor for labels.
var InitParams = map[string]string{
	"tessedit_ocr_engine_mode":    "1",
	"tessedit_minimal_confidence": "60",
}

// WriteParamsFile writes params as a tesseract config file ("name value"
// per line, sorted by name) under dir and returns its path.
func WriteParamsFile(dir string, params map[string]string) (string, error) {
	var b strings.Builder
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s %s\n", k, params[k])
	}
	path := filepath.Join(dir, "autologin.tesscfg")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("ocr: write params file: %w", err)
	}
	return path, nil
}
