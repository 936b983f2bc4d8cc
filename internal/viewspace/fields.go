package viewspace

import "sort"

// #region field-set
// FieldSet is an unordered set of field IDs.
type FieldSet map[string]struct{}

// NewFieldSet builds a set from a list of field IDs.
func NewFieldSet(ids []string) FieldSet {
	s := make(FieldSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s FieldSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Equal reports set equality.
func (s FieldSet) Equal(o FieldSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s FieldSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |a∩b| / |a∪b|. Two empty sets are identical (1).
func Jaccard(a, b FieldSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for id := range a {
		if b.Has(id) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// #endregion field-set

// #region composition
// SameFields reports whether a and b have the same dimension set and the
// same measure set, ignoring order.
func SameFields(a, b Fielded) bool {
	return NewFieldSet(a.FieldDimensions()).Equal(NewFieldSet(b.FieldDimensions())) &&
		NewFieldSet(a.FieldMeasures()).Equal(NewFieldSet(b.FieldMeasures()))
}

// #endregion composition
