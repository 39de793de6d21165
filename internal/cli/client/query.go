package client

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize matches the server's default page size
	DefaultPageSize = 12
	// TrashPageSize is the page size the trash listing uses
	TrashPageSize = 20

	SortByPrice     = "price"
	SortByCreatedAt = "createdAt"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

// PageRequest selects a zero-based page
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) apply(values url.Values) {
	page := p.Page
	if page < 0 {
		page = 0
	}
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("size", strconv.Itoa(size))
}

// SpriteFilter narrows sprite listings
type SpriteFilter struct {
	Keyword     string
	CategoryIDs []string
	SortBy      string
	SortOrder   string
}

// DefaultSpriteFilter returns the newest-first filter
func DefaultSpriteFilter() SpriteFilter {
	return SpriteFilter{SortBy: SortByCreatedAt, SortOrder: SortDesc}
}

// ToggleCategory adds the category when absent and removes it when present
func (f *SpriteFilter) ToggleCategory(id string) {
	f.CategoryIDs = toggle(f.CategoryIDs, id)
}

// Reset restores the defaults
func (f *SpriteFilter) Reset() {
	*f = DefaultSpriteFilter()
}

// Validate rejects unknown sort keys
func (f SpriteFilter) Validate() error {
	return validateSort(f.SortBy, f.SortOrder)
}

// Values serializes the filter; arrays repeat the key and empty values are omitted
func (f SpriteFilter) Values() url.Values {
	values := url.Values{}
	setIfNotEmpty(values, "keyword", strings.TrimSpace(f.Keyword))
	for _, id := range f.CategoryIDs {
		values.Add("categoryIds", id)
	}
	setIfNotEmpty(values, "sortBy", f.SortBy)
	setIfNotEmpty(values, "sortOrder", f.SortOrder)
	return values
}

// AssetPackFilter narrows asset pack listings
type AssetPackFilter struct {
	Keyword     string
	CategoryIDs []string
	MinPrice    *float64
	MaxPrice    *float64
	SortBy      string
	SortOrder   string
}

// DefaultAssetPackFilter returns the newest-first filter
func DefaultAssetPackFilter() AssetPackFilter {
	return AssetPackFilter{SortBy: SortByCreatedAt, SortOrder: SortDesc}
}

// ToggleCategory adds the category when absent and removes it when present
func (f *AssetPackFilter) ToggleCategory(id string) {
	f.CategoryIDs = toggle(f.CategoryIDs, id)
}

// Reset restores the defaults
func (f *AssetPackFilter) Reset() {
	*f = DefaultAssetPackFilter()
}

// Validate rejects unknown sort keys and inverted price ranges
func (f AssetPackFilter) Validate() error {
	if err := validateSort(f.SortBy, f.SortOrder); err != nil {
		return err
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("min price must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("min price %.2f is greater than max price %.2f", *f.MinPrice, *f.MaxPrice)
	}
	return nil
}

// Values serializes the filter; arrays repeat the key and nil values are omitted
func (f AssetPackFilter) Values() url.Values {
	values := url.Values{}
	setIfNotEmpty(values, "keyword", strings.TrimSpace(f.Keyword))
	for _, id := range f.CategoryIDs {
		values.Add("categoryIds", id)
	}
	if f.MinPrice != nil {
		values.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		values.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	setIfNotEmpty(values, "sortBy", f.SortBy)
	setIfNotEmpty(values, "sortOrder", f.SortOrder)
	return values
}

func validateSort(sortBy, sortOrder string) error {
	switch sortBy {
	case "", SortByPrice, SortByCreatedAt:
	default:
		return fmt.Errorf("invalid sort field %q, must be one of: %s, %s", sortBy, SortByPrice, SortByCreatedAt)
	}
	switch sortOrder {
	case "", SortAsc, SortDesc:
	default:
		return fmt.Errorf("invalid sort order %q, must be one of: %s, %s", sortOrder, SortAsc, SortDesc)
	}
	return nil
}

func setIfNotEmpty(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

func toggle(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}
