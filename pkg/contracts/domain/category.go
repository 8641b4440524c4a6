package domain

import (
	"fmt"
	"sort"
)

// Category is an enumerated, ordered categorical type built once at load
// time. Membership is validated at construction; downstream code asks for a
// value's ordinal instead of comparing raw strings, so an out-of-vocabulary
// value surfaces as an error rather than sorting arbitrarily.
type Category struct {
	name    string
	values  []string
	ordinal map[string]int
}

// NewCategory builds a category from observed values. Values are
// deduplicated and sorted lexically, matching the ordering the analysis
// notebooks expect for genotype, temperature, sex and food-choice axes.
func NewCategory(name string, observed []string) *Category {
	seen := make(map[string]struct{}, len(observed))
	uniq := make([]string, 0, len(observed))
	for _, v := range observed {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	sort.Strings(uniq)
	return newOrdered(name, uniq)
}

// NewFixedCategory builds a category whose order is given, not sorted.
// Used for Status, whose Sibling < Offspring order is semantic.
func NewFixedCategory(name string, ordered []string) (*Category, error) {
	seen := make(map[string]struct{}, len(ordered))
	for _, v := range ordered {
		if _, ok := seen[v]; ok {
			return nil, fmt.Errorf("category %s: duplicate value %q", name, v)
		}
		seen[v] = struct{}{}
	}
	return newOrdered(name, append([]string(nil), ordered...)), nil
}

func newOrdered(name string, values []string) *Category {
	ordinal := make(map[string]int, len(values))
	for i, v := range values {
		ordinal[v] = i
	}
	return &Category{name: name, values: values, ordinal: ordinal}
}

// Name returns the category's column name.
func (c *Category) Name() string { return c.name }

// Len returns the number of members.
func (c *Category) Len() int { return len(c.values) }

// Values returns the ordered member list as a copy.
func (c *Category) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

// Contains reports membership.
func (c *Category) Contains(value string) bool {
	_, ok := c.ordinal[value]
	return ok
}

// Ordinal returns the position of value in the category's order.
func (c *Category) Ordinal(value string) (int, error) {
	i, ok := c.ordinal[value]
	if !ok {
		return 0, fmt.Errorf("value %q is not a member of category %s", value, c.name)
	}
	return i, nil
}

// Union merges two categories over the same column name, preserving the
// receiver's order and appending the other's unseen members. Used when two
// experiments are combined.
func (c *Category) Union(other *Category) *Category {
	if other == nil {
		return newOrdered(c.name, c.Values())
	}
	merged := c.Values()
	for _, v := range other.values {
		if !c.Contains(v) {
			merged = append(merged, v)
		}
	}
	sort.Strings(merged)
	return newOrdered(c.name, merged)
}
