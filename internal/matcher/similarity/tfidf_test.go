package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTransformWeights(t *testing.T) {
	vecs, err := NewVectorizer(1, 1).FitTransform([]string{"go rust", "go"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	// "go" appears in both documents: idf = ln(3/3)+1 = 1.
	// "rust" appears in one: idf = ln(3/2)+1.
	rustIDF := math.Log(1.5) + 1
	norm := math.Sqrt(1 + rustIDF*rustIDF)
	assert.InDelta(t, 1/norm, vecs[0]["go"], 1e-9)
	assert.InDelta(t, rustIDF/norm, vecs[0]["rust"], 1e-9)
	assert.InDelta(t, 1.0, vecs[1]["go"], 1e-9)
}

func TestFitTransformBigrams(t *testing.T) {
	vecs, err := NewVectorizer(1, 2).FitTransform([]string{"web design", "web"})
	require.NoError(t, err)
	assert.Contains(t, vecs[0], "web design")
	assert.Contains(t, vecs[0], "web")
	assert.Contains(t, vecs[0], "design")
	assert.Len(t, vecs[1], 1)
}

func TestFitTransformEmptyVocabulary(t *testing.T) {
	_, err := NewVectorizer(1, 2).FitTransform([]string{"", "  "})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)

	_, err = Pair("", "")
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestPair(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		want    float64
		between [2]float64
	}{
		{name: "identical", a: "python developer react", b: "python developer react", want: 1},
		{name: "disjoint", a: "python developer", b: "marketing manager", want: 0},
		{name: "one side empty", a: "python developer", b: "", want: 0},
		{name: "partial overlap", a: "python developer react", b: "python engineer", want: -1, between: [2]float64{0.05, 0.6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pair(tt.a, tt.b)
			require.NoError(t, err)
			if tt.want >= 0 {
				assert.InDelta(t, tt.want, got, 1e-9)
				return
			}
			assert.Greater(t, got, tt.between[0])
			assert.Less(t, got, tt.between[1])
		})
	}
}

func TestPairSymmetric(t *testing.T) {
	ab, err := Pair("senior go engineer kafka", "go engineer redis")
	require.NoError(t, err)
	ba, err := Pair("go engineer redis", "senior go engineer kafka")
	require.NoError(t, err)
	assert.InDelta(t, ab, ba, 1e-12)
}

func TestCosineZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, Cosine(Vector{}, Vector{"go": 1}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestNewVectorizerClampsRange(t *testing.T) {
	v := NewVectorizer(0, -1)
	assert.Equal(t, 1, v.MinN)
	assert.Equal(t, 1, v.MaxN)
}
