package field

import (
	"math"
	"sort"
)

// #region entropy
// NormalizedEntropy returns the field's entropy scaled into [0, 1].
// Missing values are derived: entropy from the distribution, max entropy
// from the cardinality (or the number of distribution members).
func (s Summary) NormalizedEntropy() float64 {
	h := s.Entropy
	if h == 0 && len(s.Distribution) > 0 {
		h = shannon(s.Distribution)
	}
	maxH := s.MaxEntropy
	if maxH == 0 {
		n := s.Cardinality
		if n == 0 {
			n = len(s.Distribution)
		}
		if n > 1 {
			maxH = math.Log2(float64(n))
		}
	}
	if maxH <= 0 {
		return 0
	}
	return clamp01(h / maxH)
}

// Interestingness scores how structured a field's distribution is.
// A skewed field (low normalized entropy) is more interesting than a
// uniform one.
func (s Summary) Interestingness() float64 {
	return 1 - s.NormalizedEntropy()
}

func shannon(bins []Bin) float64 {
	var total float64
	for _, b := range bins {
		if b.Count > 0 {
			total += b.Count
		}
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, b := range bins {
		if b.Count <= 0 {
			continue
		}
		p := b.Count / total
		h -= p * math.Log2(p)
	}
	return h
}

// #endregion entropy

// #region divergence
// ShapeDivergence is the base-2 Jensen-Shannon divergence between the
// rank-ordered frequency shapes of two distributions. Members are not
// aligned by name, so fields with different domains remain comparable.
// Result is in [0, 1]; two empty distributions have divergence 0.
func ShapeDivergence(a, b Summary) float64 {
	p := shape(a.Distribution)
	q := shape(b.Distribution)
	if len(p) == 0 && len(q) == 0 {
		return 0
	}
	if len(p) == 0 || len(q) == 0 {
		return 1
	}
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	p = pad(p, n)
	q = pad(q, n)

	var js float64
	for i := 0; i < n; i++ {
		m := (p[i] + q[i]) / 2
		js += 0.5*klTerm(p[i], m) + 0.5*klTerm(q[i], m)
	}
	return clamp01(js)
}

// ProfileSimilarity compares two field profiles by distribution shape and
// normalized entropy. Fields of different semantic types score half.
func ProfileSimilarity(a, b Summary) float64 {
	if a.ID != "" && a.ID == b.ID {
		return 1
	}
	shapeSim := 1 - ShapeDivergence(a, b)
	entropySim := 1 - math.Abs(a.NormalizedEntropy()-b.NormalizedEntropy())
	sim := 0.5*shapeSim + 0.5*entropySim
	if a.SemanticType != "" && b.SemanticType != "" && a.SemanticType != b.SemanticType {
		sim *= 0.5
	}
	return clamp01(sim)
}

func shape(bins []Bin) []float64 {
	var total float64
	counts := make([]float64, 0, len(bins))
	for _, b := range bins {
		if b.Count > 0 {
			counts = append(counts, b.Count)
			total += b.Count
		}
	}
	if total == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(counts)))
	for i := range counts {
		counts[i] /= total
	}
	return counts
}

func pad(v []float64, n int) []float64 {
	if len(v) >= n {
		return v
	}
	out := make([]float64, n)
	copy(out, v)
	return out
}

func klTerm(p, m float64) float64 {
	if p == 0 || m == 0 {
		return 0
	}
	return p * math.Log2(p/m)
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// #endregion divergence
