package core

import "strings"

// Category is one of the closed set of expense categories, held in display case.
type Category string

const (
	Food           Category = "Food"
	Utilities      Category = "Utilities"
	Housing        Category = "Housing"
	Transportation Category = "Transportation"
	Insurance      Category = "Insurance"
	Medical        Category = "Medical"
	DebtPayment    Category = "Debt Payment"
	Entertainment  Category = "Entertainment"
	Misc           Category = "Misc"
	Shopping       Category = "Shopping"
)

// WildcardCategory selects every category in read queries. It is never persisted.
const WildcardCategory = "all"

var categories = []Category{
	Food, Utilities, Housing, Transportation, Insurance,
	Medical, DebtPayment, Entertainment, Misc, Shopping,
}

var categoriesByKey = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Key()] = c
	}
	return m
}()

// Categories returns the supported categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Key returns the lower-case comparison form.
func (c Category) Key() string {
	return strings.ToLower(strings.TrimSpace(string(c)))
}

// Valid reports whether c names a supported category in any letter case.
func (c Category) Valid() bool {
	_, ok := categoriesByKey[c.Key()]
	return ok
}

// Canonical returns the display-case form, or c unchanged when it is not a
// supported category.
func (c Category) Canonical() Category {
	if canon, ok := categoriesByKey[c.Key()]; ok {
		return canon
	}
	return c
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory validates a category for writes. The wildcard is rejected.
// The result is in canonical display case.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := categoriesByKey[key]; ok {
		return c, nil
	}
	return "", &InvalidCategoryError{Token: key}
}

// CategoryFilter is a validated read-side category selection: either every
// category or an OR-list of specific ones.
type CategoryFilter struct {
	all  bool
	cats []Category
}

// AnyCategory is the filter that matches every row.
func AnyCategory() CategoryFilter {
	return CategoryFilter{all: true}
}

// OnlyCategories builds a filter from already validated categories.
func OnlyCategories(cats ...Category) CategoryFilter {
	return CategoryFilter{cats: append([]Category(nil), cats...)}
}

// ParseCategoryFilter accepts "all", a single category or a comma-separated
// list. Tokens are trimmed and matched case-insensitively; a list that
// contains "all" selects every category.
func ParseCategoryFilter(s string) (CategoryFilter, error) {
	var f CategoryFilter
	seen := make(map[Category]struct{})
	for _, tok := range strings.Split(s, ",") {
		key := strings.ToLower(strings.TrimSpace(tok))
		if key == WildcardCategory {
			f.all = true
			continue
		}
		c, ok := categoriesByKey[key]
		if !ok {
			return CategoryFilter{}, &InvalidCategoryError{Token: key, AllowWildcard: true}
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		f.cats = append(f.cats, c)
	}
	if f.all {
		f.cats = nil
	}
	return f, nil
}

// All reports whether the filter selects every category.
func (f CategoryFilter) All() bool {
	return f.all
}

// Categories returns the selected categories; empty when All is true.
func (f CategoryFilter) Categories() []Category {
	return append([]Category(nil), f.cats...)
}

// Keys returns the lower-case forms of the selected categories.
func (f CategoryFilter) Keys() []string {
	keys := make([]string, len(f.cats))
	for i, c := range f.cats {
		keys[i] = c.Key()
	}
	return keys
}

func (f CategoryFilter) String() string {
	if f.all {
		return WildcardCategory
	}
	parts := make([]string, len(f.cats))
	for i, c := range f.cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func categoryDisplayList() string {
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
