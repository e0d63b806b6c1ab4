package domain

import "strings"

type Variant struct {
	Price            float64 `json:"price"`
	AvailableForSale bool    `json:"available_for_sale"`
}

// Product is a read-only catalog record supplied by the catalog provider.
type Product struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	ProductType    string    `json:"product_type,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency,omitempty"`
	ImageURLs      []string  `json:"image_urls,omitempty"`
	Variants       []Variant `json:"variants,omitempty"`
	TotalInventory *int      `json:"total_inventory,omitempty"`
}

// Available reports whether any variant is available for sale. Products without
// variant data fall back to catalog-level inventory.
func (p Product) Available() bool {
	if len(p.Variants) == 0 {
		return p.TotalInventory != nil && *p.TotalInventory > 0
	}
	for _, v := range p.Variants {
		if v.AvailableForSale {
			return true
		}
	}
	return false
}

// SearchText is the lowercase haystack used by keyword filters and scorers.
func (p Product) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		p.Title,
		p.Description,
		p.ProductType,
		strings.Join(p.Tags, " "),
	}, " "))
}

func (p Product) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}
