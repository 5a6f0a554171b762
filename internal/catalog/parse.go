// Package catalog decodes, validates and loads the intent catalog.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"support-bot/internal/common/errors"
	"support-bot/internal/models"

	"gopkg.in/yaml.v3"
)

// Format is a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a config value such as "yml" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown catalog format %q", s)
	}
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a catalog. source names the origin in errors.
func Parse(data []byte, format Format, source string) (*models.Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewCatalogMalformedError(source, fmt.Errorf("empty document"))
	}

	var cat models.Catalog
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, errors.NewCatalogMalformedError(source, err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, errors.NewCatalogMalformedError(source, err)
		}
	default:
		return nil, errors.NewCatalogMalformedError(source, fmt.Errorf("unknown format %q", format))
	}

	if err := Validate(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Encode serializes a catalog in the given format.
func Encode(cat *models.Catalog, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(cat)
	case FormatJSON, "":
		return json.MarshalIndent(cat, "", "  ")
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}
}

// LoadFile reads a JSON or YAML catalog from disk.
func LoadFile(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewCatalogNotFoundError(path, err)
		}
		return nil, errors.NewCatalogSourceFailedError(path, err)
	}
	return Parse(data, FormatFromPath(path), path)
}
