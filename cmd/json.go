package cmd

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

var OutFilePerm = os.FileMode(0o755)

// LoadJSON reads a JSON file into a fresh X. A ".gz" suffix selects gzip
// decompression.
func LoadJSON[X any](inputPath string) (*X, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("no path specified")
	}
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", inputPath, err)
	}
	defer f.Close()
	var r io.Reader = f
	if isGzip(inputPath) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip reader for %q: %w", inputPath, err)
		}
		defer zr.Close()
		r = zr
	}
	var state X
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode file %q: %w", inputPath, err)
	}
	return &state, nil
}

// WriteJSON writes a value as JSON. "-" writes to stdout, the empty path is
// a no-op, and a ".gz" suffix selects gzip compression.
func WriteJSON[X any](outputPath string, value X, perm os.FileMode) error {
	if outputPath == "" {
		return nil
	}
	if outputPath == "-" {
		if err := json.NewEncoder(os.Stdout).Encode(value); err != nil {
			return fmt.Errorf("failed to encode to stdout: %w", err)
		}
		return nil
	}
	f, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to open output file %q: %w", outputPath, err)
	}
	defer f.Close()
	var w io.Writer = f
	if isGzip(outputPath) {
		zw := gzip.NewWriter(f)
		defer zw.Close()
		w = zw
	}
	if err := json.NewEncoder(w).Encode(value); err != nil {
		return fmt.Errorf("failed to encode to %q: %w", outputPath, err)
	}
	return nil
}

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}
