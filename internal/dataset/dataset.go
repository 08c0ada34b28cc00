// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes paper tables as CSV, JSON, or YAML and
// provides the table-level cleanups run before analysis.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-trends/pkg/types"
)

// Format is a paper table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

// Load reads a paper table. Papers without a topic id get the outlier id.
func Load(path string) ([]types.Paper, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	var papers []types.Paper
	switch format {
	case FormatCSV:
		papers, err = ReadCSV(f)
	case FormatJSON:
		papers, err = decodeDocument(f, json.Unmarshal)
	case FormatYAML:
		papers, err = decodeDocument(f, yaml.Unmarshal)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return papers, nil
}

// Write saves a paper table, creating parent directories as needed.
func Write(path string, papers []types.Paper) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dataset: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		err = WriteCSV(f, papers)
	case FormatJSON:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(documentOf(papers))
	case FormatYAML:
		enc := yaml.NewEncoder(f)
		err = enc.Encode(documentOf(papers))
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("writing dataset %s: %w", path, err)
	}
	return f.Close()
}
