package enums

import "fmt"

// ProductCategory tags a catalog product. Informational only; lifecycle and
// pricing math never branch on it.
type ProductCategory string

const (
	ProductCategoryStreaming    ProductCategory = "streaming"
	ProductCategoryMusic        ProductCategory = "music"
	ProductCategoryVPN          ProductCategory = "vpn"
	ProductCategoryProductivity ProductCategory = "productivity"
	ProductCategoryGaming       ProductCategory = "gaming"
	ProductCategoryEducation    ProductCategory = "education"
	ProductCategoryOther        ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryStreaming,
	ProductCategoryMusic,
	ProductCategoryVPN,
	ProductCategoryProductivity,
	ProductCategoryGaming,
	ProductCategoryEducation,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the category is recognized.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
