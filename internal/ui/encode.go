package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// Encode writes s as "json" or "yaml".
func Encode(w io.Writer, format string, s models.ProfileSummary) error {
	s.Normalize()

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (supported: json, yaml)", format)
	}
}

// FormatForPath picks an encoding from the file extension, defaulting to
// JSON.
func FormatForPath(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// WriteReport encodes s to path on fs, creating parent directories.
func WriteReport(fs afero.Fs, path, format string, s models.ProfileSummary) error {
	var buf bytes.Buffer
	if err := Encode(&buf, format, s); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
