package features

import (
	"math"
	"sort"
)

// Vector is a sparse view of a Dim-sized feature vector. Indices are strictly
// ascending and every value is positive.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// IsZero reports whether no vocabulary term was present.
func (v Vector) IsZero() bool {
	return len(v.Indices) == 0
}

// Dense expands the vector to Dim entries.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for k, i := range v.Indices {
		out[i] = v.Values[k]
	}
	return out
}

// Norm returns the euclidean length.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Extract builds the TF-IDF vector for normalized text. Markers are counted as
// unigrams. N-grams missing from the vocabulary are dropped.
func (v *Vocabulary) Extract(normalized string, markers ...string) Vector {
	counts := make(map[int]int)
	for _, gram := range NGrams(Tokenize(normalized, v.settings), v.settings.MinN, v.settings.MaxN) {
		if i, ok := v.index[gram]; ok {
			counts[i]++
		}
	}
	for _, m := range markers {
		if i, ok := v.index[m]; ok {
			counts[i]++
		}
	}

	vec := Vector{Dim: len(v.terms)}
	if len(counts) == 0 {
		return vec
	}

	vec.Indices = make([]int, 0, len(counts))
	for i := range counts {
		vec.Indices = append(vec.Indices, i)
	}
	sort.Ints(vec.Indices)

	vec.Values = make([]float64, len(vec.Indices))
	for k, i := range vec.Indices {
		tf := float64(counts[i])
		if v.settings.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec.Values[k] = tf * v.terms[i].IDF
	}

	if v.settings.L2Norm {
		if n := vec.Norm(); n > 0 {
			for k := range vec.Values {
				vec.Values[k] /= n
			}
		}
	}
	return vec
}
