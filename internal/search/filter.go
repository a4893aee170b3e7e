// Package search compiles user-selected facets into the filter expression
// understood by the search backend.
package search

import (
	"fmt"
	"strconv"
	"strings"
)

// Collection scopes a filter to a single collection or category page.
type Collection struct {
	Handle string `json:"handle"`
}

// FilterParams are the user-selected facets of a product listing. Categories
// are hierarchical path strings using the caller's canonical separator.
type FilterParams struct {
	Categories []string
	Vendors    []string
	Colors     []string
	MinPrice   *float64
	MaxPrice   *float64
	Rating     float64
}

// BuildFilter compiles the facets into one filter expression. Clause order is
// fixed: collection, hierarchical categories, vendors, colors, min price,
// max price, rating. Multi-valued clauses OR their values inside parentheses;
// clauses are AND-joined. A rating of zero or below means "no rating filter".
// With nothing to filter the result is the empty string.
func BuildFilter(collection *Collection, params FilterParams, separator string) string {
	var clauses []string

	if collection != nil && collection.Handle != "" {
		clauses = append(clauses, fmt.Sprintf("collections.handle:%q", collection.Handle))
	}
	if clause := categoriesClause(params.Categories, separator); clause != "" {
		clauses = append(clauses, clause)
	}
	if clause := orClause("vendor", params.Vendors); clause != "" {
		clauses = append(clauses, clause)
	}
	if clause := orClause("flatOptions.Color", params.Colors); clause != "" {
		clauses = append(clauses, clause)
	}
	if params.MinPrice != nil {
		clauses = append(clauses, "minPrice >= "+formatNumber(*params.MinPrice))
	}
	if params.MaxPrice != nil {
		clauses = append(clauses, "minPrice <= "+formatNumber(*params.MaxPrice))
	}
	if params.Rating > 0 {
		clauses = append(clauses, "avgRating >= "+formatNumber(params.Rating))
	}

	return strings.Join(clauses, " AND ")
}

// categoriesClause emits one hierarchicalCategories level clause per selected
// path. The level is the number of separator occurrences in the path, so
// "A > B" filters on lvl1 with its full path string.
func categoriesClause(categories []string, separator string) string {
	if len(categories) == 0 {
		return ""
	}
	parts := make([]string, 0, len(categories))
	for _, path := range categories {
		depth := strings.Count(path, separator)
		parts = append(parts, fmt.Sprintf("hierarchicalCategories.lvl%d:%q", depth, path))
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// orClause ORs the values of one multi-valued facet inside parentheses.
func orClause(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%s:%q", field, v))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
