package field

// #region semantic-type
// SemanticType classifies the values a field holds.
type SemanticType string

const (
	Quantitative SemanticType = "quantitative"
	Nominal      SemanticType = "nominal"
	Ordinal      SemanticType = "ordinal"
	Temporal     SemanticType = "temporal"
)

// AnalyticType is the role a field plays in a view: grouping key or aggregated value.
type AnalyticType string

const (
	Dimension AnalyticType = "dimension"
	Measure   AnalyticType = "measure"
)

// #endregion semantic-type

// #region summary
// Bin is one member of a field's value distribution.
type Bin struct {
	Member string  `json:"member" yaml:"member"`
	Count  float64 `json:"count" yaml:"count"`
}

// Summary is the statistical profile of one data field, produced by the
// external profiler. Summaries are never mutated after ingestion.
type Summary struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name,omitempty" yaml:"name,omitempty"`
	SemanticType SemanticType `json:"semantic_type,omitempty" yaml:"semantic_type,omitempty"`
	AnalyticType AnalyticType `json:"analytic_type,omitempty" yaml:"analytic_type,omitempty"`
	Cardinality  int          `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
	Entropy      float64      `json:"entropy,omitempty" yaml:"entropy,omitempty"`
	MaxEntropy   float64      `json:"max_entropy,omitempty" yaml:"max_entropy,omitempty"`
	Distribution []Bin        `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	Grouped      bool         `json:"grouped,omitempty" yaml:"grouped,omitempty"`
}

// #endregion summary

// #region catalog
// Catalog is the working field-score list: origin summaries followed by
// grouped summaries, with an ID index for lookups.
type Catalog struct {
	list  []Summary
	index map[string]int
}

// NewCatalog concatenates origin and grouped summaries. When an ID appears
// twice the first occurrence wins.
func NewCatalog(origin, grouped []Summary) Catalog {
	c := Catalog{
		list:  make([]Summary, 0, len(origin)+len(grouped)),
		index: make(map[string]int, len(origin)+len(grouped)),
	}
	for _, s := range origin {
		c.add(s)
	}
	for _, s := range grouped {
		s.Grouped = true
		c.add(s)
	}
	return c
}

func (c *Catalog) add(s Summary) {
	c.list = append(c.list, s)
	if _, ok := c.index[s.ID]; !ok {
		c.index[s.ID] = len(c.list) - 1
	}
}

// Lookup returns the summary for a field ID.
func (c Catalog) Lookup(id string) (Summary, bool) {
	i, ok := c.index[id]
	if !ok {
		return Summary{}, false
	}
	return c.list[i], true
}

// List returns a copy of the concatenated summaries in catalog order.
func (c Catalog) List() []Summary {
	out := make([]Summary, len(c.list))
	copy(out, c.list)
	return out
}

// Len returns the number of summaries, duplicates included.
func (c Catalog) Len() int {
	return len(c.list)
}

// #endregion catalog
