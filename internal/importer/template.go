package importer

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadTemplate loads a toolpath template for injection. The file is read
// in full and closed before the lines are returned; CRLF endings are
// normalised and a trailing newline does not produce an empty last line.
func ReadTemplate(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	data, err := io.ReadAll(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits template text into lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}
