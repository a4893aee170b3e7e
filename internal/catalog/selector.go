package catalog

import "strings"

// colorAxis is the option axis the storefront varies in its URLs.
const colorAxis = "color"

// GetCombination resolves the single active combination for a product.
// With at most one variant no combination math is needed: the sole variant is
// returned (or nil when there is none). With more, the requested color wins;
// with no request the product's default color, the first declared value of
// its color option, is used. Returns nil when neither matches, which callers
// treat as "no selectable variant" rather than an error.
func GetCombination(p *Product, requestedColor string) *Combination {
	if p == nil || len(p.Variants) == 0 {
		return nil
	}
	if len(p.Variants) == 1 {
		c := GetAllCombinations(p.Variants)[0]
		return &c
	}

	color := strings.ToLower(requestedColor)
	if color == "" {
		color = defaultColor(p)
	}
	for _, c := range GetAllCombinations(p.Variants) {
		if c.Options[colorAxis] == color {
			combination := c
			return &combination
		}
	}
	return nil
}

// defaultColor is the first declared value of the product's color option,
// lower-cased. Empty when the product declares no color option.
func defaultColor(p *Product) string {
	for _, o := range p.Options {
		if NormalizeOptionName(o.Title) == colorAxis && len(o.Values) > 0 {
			return strings.ToLower(o.Values[0])
		}
	}
	return ""
}

// HasValidOption reports whether value exists among the combinations' values
// for the given option, used to validate query-string overrides. An empty
// value is always valid: it means the caller applied no constraint.
func HasValidOption(variants []Variant, optionName, value string) bool {
	if value == "" {
		return true
	}
	name := NormalizeOptionName(optionName)
	want := strings.ToLower(value)
	for _, c := range GetAllCombinations(variants) {
		if c.Options[name] == want {
			return true
		}
	}
	return false
}
