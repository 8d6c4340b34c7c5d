package xconnector

import (
	"maps"
	"slices"
	"strings"
)

// FilterSet maps a filter category to the values selected in it.
type FilterSet map[string][]string

// Categories returns the set's category names in sorted order.
func (fs FilterSet) Categories() []string {
	return slices.Sorted(maps.Keys(fs))
}

// Validate checks every value of every category against the allowed
// categories. All violations are reported, not only the first.
func (fs FilterSet) Validate(allowed []Category) []Violation {
	var violations []Violation
	for _, name := range fs.Categories() {
		values := fs[name]
		i := slices.IndexFunc(allowed, func(c Category) bool { return c.Name == name })
		if i < 0 {
			violations = append(violations, Violation{
				Field:  name,
				Values: slices.Clone(values),
				Reason: "unknown category",
			})
			continue
		}
		var invalid []string
		for _, v := range values {
			if !allowed[i].Allows(v) {
				invalid = append(invalid, v)
			}
		}
		if len(invalid) > 0 {
			violations = append(violations, Violation{
				Field:  name,
				Values: invalid,
				Reason: "allowed values are " + strings.Join(allowed[i].Values, ", "),
			})
		}
	}
	return violations
}
