// Package loader reads JSON and YAML documents into trees that keep the
// key order of the source, so diffs follow the order a reader sees.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format of an input document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// Stdin is the path that makes [Load] read from standard input.
const Stdin = "-"

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	if path == Stdin {
		return FormatAuto, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads the first document of the file at [path].
func Load(path string) (any, error) {
	docs, err := LoadAll(path)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// LoadAll reads every document of the file at [path]. JSON files hold one
// document; YAML files may hold several separated by `---`.
func LoadAll(path string) ([]any, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var r io.Reader = os.Stdin
	if path != Stdin {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func(file *os.File) {
			_ = file.Close()
		}(file)
		r = file
	}

	docs, err := DecodeAll(r, format)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", path, err)
	}
	return docs, nil
}

// Decode reads a single document from [r].
func Decode(r io.Reader, format Format) (any, error) {
	docs, err := DecodeAll(r, format)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// DecodeAll reads every document from [r]. JSON is parsed by the YAML
// decoder, which accepts it as a subset and keeps mapping order.
func DecodeAll(r io.Reader, format Format) ([]any, error) {
	switch format {
	case FormatAuto, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	dec := yaml.NewDecoder(r)
	var docs []any
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		tree, err := FromNode(&node)
		if err != nil {
			return nil, err
		}
		docs = append(docs, tree)
		if format == FormatJSON && len(docs) > 1 {
			return nil, fmt.Errorf("json input holds more than one document")
		}
	}
	return docs, nil
}
