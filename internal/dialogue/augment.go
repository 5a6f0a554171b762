package dialogue

import (
	"fmt"

	"support-bot/internal/models"
)

// AugmentationRule appends Template, formatted with the entity value, when
// an entity of type Entity was found on a turn whose current intent is Intent.
type AugmentationRule struct {
	Entity   string
	Intent   string
	Template string
}

// DefaultAugmentationRules returns the built-in rules in priority order.
func DefaultAugmentationRules() []AugmentationRule {
	return []AugmentationRule{
		{models.EntityOrderNumber, "order_status", " I've located your order #%s. "},
		{models.EntityEmail, "returns", " I'll send instructions to %s. "},
		{models.EntityProductCode, "product_info", " I've found details for product %s. "},
		{models.EntityDate, "shipping", " I've noted the date %s. "},
	}
}

// augment returns the text of the first rule matching found and intent.
func augment(rules []AugmentationRule, found models.Entities, intent string) (string, bool) {
	if len(found) == 0 || intent == "" {
		return "", false
	}
	for _, r := range rules {
		if r.Intent != intent {
			continue
		}
		if v, ok := found[r.Entity]; ok {
			return fmt.Sprintf(r.Template, v.String()), true
		}
	}
	return "", false
}
