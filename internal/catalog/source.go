package catalog

import (
	"context"

	"support-bot/internal/models"
)

// Source yields a validated catalog, or a data error from
// internal/common/errors when the catalog is missing, malformed or invalid.
type Source interface {
	Load(ctx context.Context) (*models.Catalog, error)
	Name() string
}

// FileSource reads a JSON or YAML file.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

func (s FileSource) Name() string { return "file:" + s.Path }

// StaticSource parses an in-memory document.
type StaticSource struct {
	Data   []byte
	Format Format
	Label  string
}

func (s StaticSource) Load(ctx context.Context) (*models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(s.Data, s.Format, s.Name())
}

func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// BuiltinSource is the embedded sample customer-support catalog.
func BuiltinSource() Source {
	return StaticSource{Data: defaultCatalog, Format: FormatJSON, Label: "builtin"}
}
