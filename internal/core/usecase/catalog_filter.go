package usecase

import (
	"strings"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

// avoidKeywords are lowercase substrings that disqualify a product for a shape.
// Lists are disjoint across shapes; shapes without a list keep every product.
var avoidKeywords = map[string][]string{
	domain.ShapeHourglass:        {"oversized", "baggy", "shapeless"},
	domain.ShapeInvertedTriangle: {"shoulder-pad", "puff-sleeve", "statement-shoulder"},
	domain.ShapePear:             {"hip-pocket", "cargo", "tapered-ankle"},
	domain.ShapeApple:            {"crop-top", "bodycon", "low-rise"},
	domain.ShapeRectangle:        {"drop-waist", "tent-dress"},
	domain.ShapeVShape:           {"double-breasted", "epaulette"},
	domain.ShapeOval:             {"skin-tight", "horizontal-stripe"},
}

// denyList returns the keywords for a plain shape, or the union over the
// components of a hybrid label.
func denyList(shape string) []string {
	if words, ok := avoidKeywords[shape]; ok {
		return words
	}
	var out []string
	for _, part := range domain.ShapeComponents(shape) {
		out = append(out, avoidKeywords[part]...)
	}
	return out
}

type CatalogFilter struct{}

func NewCatalogFilter() *CatalogFilter {
	return &CatalogFilter{}
}

// Filter applies the stock filter (when stockOnly) and the shape deny-list.
// Catalog order is preserved.
func (f *CatalogFilter) Filter(products []domain.Product, shape string, stockOnly bool) []domain.Product {
	deny := denyList(shape)
	out := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if stockOnly && !product.Available() {
			continue
		}
		if len(deny) > 0 && containsAny(product.SearchText(), deny) {
			continue
		}
		out = append(out, product)
	}
	return out
}

// Sample down-samples to limit products, preferring category diversity over
// catalog position. Each product type gets ceil(limit/buckets) slots in
// catalog order; leftover capacity is backfilled in catalog order.
func (f *CatalogFilter) Sample(products []domain.Product, limit int) []domain.Product {
	if limit <= 0 || len(products) <= limit {
		return products
	}

	buckets := make(map[string][]int)
	order := make([]string, 0)
	for i, product := range products {
		key := strings.ToLower(strings.TrimSpace(product.ProductType))
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	quota := (limit + len(order) - 1) / len(order)
	selected := make([]bool, len(products))
	count := 0
	for _, key := range order {
		for n, idx := range buckets[key] {
			if n >= quota || count >= limit {
				break
			}
			selected[idx] = true
			count++
		}
	}
	for i := range products {
		if count >= limit {
			break
		}
		if !selected[i] {
			selected[i] = true
			count++
		}
	}

	out := make([]domain.Product, 0, count)
	for i, product := range products {
		if selected[i] {
			out = append(out, product)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
