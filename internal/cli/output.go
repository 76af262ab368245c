package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Print writes data as indented JSON, or the text line in text mode.
func (f *OutputFormatter) Print(data any, text string) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}
