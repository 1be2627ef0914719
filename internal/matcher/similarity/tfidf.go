// Package similarity computes lexical similarity between normalised documents
// using TF-IDF weighted n-gram vectors and cosine similarity.
package similarity

import (
	"errors"
	"math"
	"strings"
)

// ErrEmptyVocabulary is returned by FitTransform when no document yields a
// single n-gram, e.g. every input normalised to nothing.
var ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain no terms")

// Vector is a sparse, L2-normalised term weight vector keyed by n-gram.
type Vector map[string]float64

// Vectorizer builds TF-IDF vectors over word n-grams in [MinN, MaxN].
// A Vectorizer holds no fitted state, so one value may be shared by
// concurrent callers; every FitTransform call fits a fresh vector space.
type Vectorizer struct {
	MinN int
	MaxN int
}

// NewVectorizer returns a Vectorizer for the given n-gram range.
func NewVectorizer(minN, maxN int) *Vectorizer {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	return &Vectorizer{MinN: minN, MaxN: maxN}
}

// FitTransform fits document frequencies jointly on docs (whitespace
// separated, already normalised) and returns one vector per document.
//
// Weights follow the smoothed formulation tf * (ln((1+n)/(1+df)) + 1), with
// tf the raw n-gram count and each row scaled to unit length.
func (v *Vectorizer) FitTransform(docs []string) ([]Vector, error) {
	counts := make([]map[string]int, len(docs))
	docFreq := make(map[string]int)
	for i, doc := range docs {
		counts[i] = v.ngramCounts(strings.Fields(doc))
		for term := range counts[i] {
			docFreq[term]++
		}
	}
	if len(docFreq) == 0 {
		return nil, ErrEmptyVocabulary
	}

	n := float64(len(docs))
	vectors := make([]Vector, len(docs))
	for i, tf := range counts {
		vec := make(Vector, len(tf))
		var sumSquares float64
		for term, count := range tf {
			idf := computeIDF(n, float64(docFreq[term]))
			w := float64(count) * idf
			vec[term] = w
			sumSquares += w * w
		}
		if sumSquares > 0 {
			norm := math.Sqrt(sumSquares)
			for term := range vec {
				vec[term] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// ngramCounts counts every n-gram of tokens for n in [MinN, MaxN].
func (v *Vectorizer) ngramCounts(tokens []string) map[string]int {
	out := make(map[string]int)
	for n := v.MinN; n <= v.MaxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return out
}

func computeIDF(totalDocs, docFreq float64) float64 {
	return math.Log((1+totalDocs)/(1+docFreq)) + 1
}

// Cosine returns the cosine similarity of two L2-normalised vectors, clamped
// to [0, 1]. A zero vector has similarity 0 with everything.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	return math.Max(0, math.Min(1, dot))
}

// Pair fits a fresh unigram+bigram space on exactly two documents and returns
// their cosine similarity in [0, 1].
func Pair(a, b string) (float64, error) {
	vecs, err := NewVectorizer(1, 2).FitTransform([]string{a, b})
	if err != nil {
		return 0, err
	}
	return Cosine(vecs[0], vecs[1]), nil
}
