package ingest

import (
	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region derive
// DeriveCandidates builds one candidate per subspace with a minimal schema:
// a mark chosen from the field types and one encoding channel per field.
func DeriveCandidates(subspaces []viewspace.Subspace, fields field.Catalog) []viewspace.ViewSpace {
	out := make([]viewspace.ViewSpace, len(subspaces))
	for i, sub := range subspaces {
		out[i] = viewspace.ViewSpace{
			Index:      i,
			Dimensions: append([]string(nil), sub.Dimensions...),
			Measures:   append([]string(nil), sub.Measures...),
			Schema:     schemaFor(sub, fields),
			Score:      sub.Score,
		}
	}
	return out
}

var dimensionChannels = []string{"x", "color", "row", "column", "shape"}
var measureChannels = []string{"y", "size", "opacity"}

func schemaFor(sub viewspace.Subspace, fields field.Catalog) viewspace.Schema {
	encoding := map[string]any{}

	ch := 0
	for _, id := range sub.Dimensions {
		if ch >= len(dimensionChannels) {
			break
		}
		encoding[dimensionChannels[ch]] = map[string]any{"field": id, "type": string(typeOf(id, fields, field.Nominal))}
		ch++
	}

	ch = 0
	for _, id := range sub.Measures {
		if ch >= len(measureChannels) {
			break
		}
		name := measureChannels[ch]
		if len(sub.Dimensions) == 0 && ch == 0 {
			name = "x"
		} else if len(sub.Dimensions) == 0 && ch == 1 {
			name = "y"
		}
		encoding[name] = map[string]any{"field": id, "type": string(field.Quantitative), "aggregate": "sum"}
		ch++
	}

	return viewspace.Schema{
		"mark":     markFor(sub, fields),
		"encoding": encoding,
	}
}

func markFor(sub viewspace.Subspace, fields field.Catalog) string {
	if len(sub.Dimensions) == 0 {
		if len(sub.Measures) >= 2 {
			return "point"
		}
		return "tick"
	}
	switch typeOf(sub.Dimensions[0], fields, field.Nominal) {
	case field.Temporal:
		return "line"
	case field.Quantitative:
		return "point"
	default:
		return "bar"
	}
}

func typeOf(id string, fields field.Catalog, fallback field.SemanticType) field.SemanticType {
	if s, ok := fields.Lookup(id); ok && s.SemanticType != "" {
		return s.SemanticType
	}
	return fallback
}

// #endregion derive
