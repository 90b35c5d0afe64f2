package airesponse

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// CategoriesShape folds key synonyms in place, then checks that the object
// carries a "categories" array of objects and that at least one element
// carries every key in itemKeys. Elements missing keys are not rejected here;
// the generators drop them individually so one bad category cannot discard
// the whole response.
func CategoriesShape(itemKeys ...string) ShapeFunc {
	return func(obj map[string]any) error {
		foldKey(obj, "category", "categories")

		raw, ok := obj["categories"]
		if !ok {
			return fmt.Errorf("missing required key %q", "categories")
		}
		list, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("key %q is not an array", "categories")
		}
		if len(list) == 0 {
			return nil
		}

		usable := 0
		for _, el := range list {
			m, ok := el.(map[string]any)
			if !ok {
				continue
			}
			foldKey(m, "item", "items")
			if hasKeys(m, itemKeys) {
				usable++
			}
		}
		if usable == 0 {
			return fmt.Errorf("no category element carries the required keys %v", itemKeys)
		}
		return nil
	}
}

// foldKey renames a singular/plural synonym onto the schema key when the
// schema key itself is absent.
func foldKey(m map[string]any, synonym, canonical string) {
	if _, ok := m[canonical]; ok {
		return
	}
	if v, ok := m[synonym]; ok {
		m[canonical] = v
		delete(m, synonym)
	}
}

func hasKeys(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// RawCategory is one named group extracted from a recovered object.
type RawCategory struct {
	Name  string
	Items []map[string]any
}

// Categories extracts the usable category elements from a recovered object,
// skipping elements that are not objects. Call only after Recover succeeded
// with a CategoriesShape validator.
func Categories(obj map[string]any) []RawCategory {
	list, _ := obj["categories"].([]any)
	out := make([]RawCategory, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		cat := RawCategory{Name: StringField(m, "name")}
		items, _ := m["items"].([]any)
		for _, it := range items {
			im, ok := it.(map[string]any)
			if !ok {
				continue
			}
			cat.Items = append(cat.Items, im)
		}
		out = append(out, cat)
	}
	return out
}

var labelNormalizer = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeCategory reconciles a free-text category label against the fixed
// enumeration: exact code match first, then uppercase-with-underscores match
// against the display name, falling back to def. A single unmatched label
// degrades to the default bucket instead of aborting the whole generation.
func NormalizeCategory(label string, choices []types.CategoryChoice, def string) string {
	normalized := labelNormalizer.Replace(strings.ToUpper(strings.TrimSpace(label)))
	for _, c := range choices {
		if normalized == c.Code {
			return c.Code
		}
		if normalized == labelNormalizer.Replace(strings.ToUpper(c.Display)) {
			return c.Code
		}
	}
	return def
}

// StringField returns the trimmed string value under key, or "".
func StringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// IntField returns the integer value under key, tolerating the float64 that
// encoding/json produces for all numbers, or def when absent or unusable.
func IntField(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// BoolField returns the boolean value under key, defaulting to false.
func BoolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}
