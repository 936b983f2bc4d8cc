package viewspace

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// #region schema
// Schema is an opaque visualization specification. The engine stores and
// snapshots it but never interprets it.
type Schema map[string]any

// Clone returns a deep copy of the schema so snapshots are not affected by
// later edits of the original.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	return cloneValue(map[string]any(s)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Schema:
		return Schema(cloneValue(map[string]any(t)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// UnmarshalYAML decodes nested objects as map[string]any, the same shape
// encoding/json produces, instead of the named Schema type.
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	*s = Schema(normalizeYAML(raw).(map[string]any))
	return nil
}

// normalizeYAML converts map[any]any (non-string keys) to map[string]any.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

// #endregion schema

// #region fielded
// Fielded is anything made of a dimension set and a measure set.
type Fielded interface {
	FieldDimensions() []string
	FieldMeasures() []string
}

// #endregion fielded

// #region subspace
// Subspace is a raw dimension/measure combination found by the external
// subspace search, before it is turned into a rendered candidate.
type Subspace struct {
	Dimensions []string `json:"dimensions" yaml:"dimensions"`
	Measures   []string `json:"measures" yaml:"measures"`
	Score      float64  `json:"score,omitempty" yaml:"score,omitempty"`
}

func (s Subspace) FieldDimensions() []string { return s.Dimensions }
func (s Subspace) FieldMeasures() []string   { return s.Measures }

// #endregion subspace

// #region view-space
// ViewSpace is one generated visualization candidate. Index is assigned at
// ingestion and never reassigned, so it identifies the candidate across
// clustering and navigation.
type ViewSpace struct {
	Index      int      `json:"index" yaml:"index"`
	Dimensions []string `json:"dimensions" yaml:"dimensions"`
	Measures   []string `json:"measures" yaml:"measures"`
	Schema     Schema   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Score      float64  `json:"score,omitempty" yaml:"score,omitempty"`
}

func (v ViewSpace) FieldDimensions() []string { return v.Dimensions }
func (v ViewSpace) FieldMeasures() []string   { return v.Measures }

// Clone returns a copy that shares no slices or schema maps with v.
func (v ViewSpace) Clone() ViewSpace {
	v.Dimensions = append([]string(nil), v.Dimensions...)
	v.Measures = append([]string(nil), v.Measures...)
	v.Schema = v.Schema.Clone()
	return v
}

// CloneAll deep-copies a list of view spaces. A nil list stays nil.
func CloneAll(list []ViewSpace) []ViewSpace {
	if list == nil {
		return nil
	}
	out := make([]ViewSpace, len(list))
	for i, v := range list {
		out[i] = v.Clone()
	}
	return out
}

// #endregion view-space

// #region cluster-group
// ClusterGroup is a set of near-duplicate candidates. Members[0] is the
// representative.
type ClusterGroup struct {
	Representative ViewSpace   `json:"representative"`
	Members        []ViewSpace `json:"members"`
}

// Clone returns a deep copy of the group.
func (g ClusterGroup) Clone() ClusterGroup {
	return ClusterGroup{Representative: g.Representative.Clone(), Members: CloneAll(g.Members)}
}

// GroupRef is the index-only form of a ClusterGroup used on the wire.
type GroupRef struct {
	Representative int   `json:"representative"`
	Members        []int `json:"members"`
}

// Representatives returns the navigable page list: one representative per
// group, in group order.
func Representatives(groups []ClusterGroup) []ViewSpace {
	out := make([]ViewSpace, len(groups))
	for i, g := range groups {
		out[i] = g.Representative
	}
	return out
}

// Refs converts groups to their index-only form.
func Refs(groups []ClusterGroup) []GroupRef {
	out := make([]GroupRef, len(groups))
	for i, g := range groups {
		members := make([]int, len(g.Members))
		for j, m := range g.Members {
			members[j] = m.Index
		}
		out[i] = GroupRef{Representative: g.Representative.Index, Members: members}
	}
	return out
}

// #endregion cluster-group
