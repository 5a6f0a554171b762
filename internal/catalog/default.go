package catalog

import (
	_ "embed"

	"support-bot/internal/models"
)

//go:embed data/customer_support.json
var defaultCatalog []byte

// Default returns a fresh copy of the built-in customer-support catalog.
func Default() (*models.Catalog, error) {
	return Parse(defaultCatalog, FormatJSON, "builtin")
}

// DefaultDocument returns the built-in catalog as JSON.
func DefaultDocument() []byte {
	out := make([]byte, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}
