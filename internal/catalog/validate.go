package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"support-bot/internal/common/errors"
	"support-bot/internal/common/validation"
	"support-bot/internal/models"
)

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*validation.Schema, error) {
	return validation.Compile(schemaJSON)
})

// Validate checks the catalog shape against the embedded JSON schema and
// that tags are unique. Violations are reported together as CATALOG_INVALID.
func Validate(cat *models.Catalog) error {
	if cat == nil {
		return errors.NewCatalogInvalidError([]string{"catalog is nil"})
	}

	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	result, err := schema.Validate(cat)
	if err != nil {
		return errors.NewCatalogMalformedError("catalog", err)
	}

	violations := result.GetErrorMessages()

	seen := make(map[string]int, len(cat.Intents))
	for i, in := range cat.Intents {
		if in.Tag == "" {
			continue
		}
		if first, dup := seen[in.Tag]; dup {
			violations = append(violations, fmt.Sprintf("intents.%d.tag: %q duplicates intents.%d", i, in.Tag, first))
			continue
		}
		seen[in.Tag] = i
	}

	if len(violations) > 0 {
		return errors.NewCatalogInvalidError(violations)
	}
	return nil
}
