package model

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := NewSource().LoadBundle(context.Background(),
		filepath.Join("testdata", "vectorizer.json"),
		filepath.Join("testdata", "classifier.json"))
	require.NoError(t, err)
	return b
}

func TestCountVectorizer_Transform(t *testing.T) {
	b := loadTestBundle(t)
	vec := b.Vectorizer
	require.Equal(t, 9, vec.Size())

	tests := []struct {
		name  string
		input string
		want  map[string]float64
	}{
		{"empty", "", nil},
		{"single char tokens dropped", "a b c", nil},
		{"out of vocabulary ignored", "zebra quantum", nil},
		{"counts repeats", "stock stock stock ralli", map[string]float64{"stock": 3, "ralli": 1}},
		{"lowercases", "TECH Compani", map[string]float64{"tech": 1, "compani": 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x := vec.Transform(tc.input)
			require.Len(t, x, vec.Size())
			for i, v := range x {
				require.Equal(t, tc.want[vec.Term(i)], v, vec.Term(i))
			}
		})
	}
}

func TestCountVectorizer_NGrams(t *testing.T) {
	vec, err := NewCountVectorizer(VectorizerArtifact{
		Vocabulary: map[string]int{"stock": 0, "ralli": 1, "stock ralli": 2},
		NGramRange: []int{1, 2},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"stock", "ralli", "stock ralli"}, vec.Analyze("stock ralli"))
	require.Equal(t, []float64{1, 1, 1}, vec.Transform("stock ralli"))

	bigrams, err := NewCountVectorizer(VectorizerArtifact{
		Vocabulary: map[string]int{"stock ralli": 0},
		NGramRange: []int{2, 2},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"stock ralli", "ralli hard"}, bigrams.Analyze("stock ralli hard"))
	require.Empty(t, bigrams.Analyze("stock"))
}

func TestNewCountVectorizer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		a    VectorizerArtifact
	}{
		{"empty vocabulary", VectorizerArtifact{}},
		{"index out of range", VectorizerArtifact{Vocabulary: map[string]int{"a": 0, "b": 2}}},
		{"duplicate index", VectorizerArtifact{Vocabulary: map[string]int{"aa": 0, "bb": 0}}},
		{"bad pattern", VectorizerArtifact{Vocabulary: map[string]int{"aa": 0}, TokenPattern: "("}},
		{"bad ngram arity", VectorizerArtifact{Vocabulary: map[string]int{"aa": 0}, NGramRange: []int{1}}},
		{"inverted ngram range", VectorizerArtifact{Vocabulary: map[string]int{"aa": 0}, NGramRange: []int{2, 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCountVectorizer(tc.a)
			require.ErrorIs(t, err, ErrArtifactCorrupt)
		})
	}
}

func TestLinearClassifier(t *testing.T) {
	b := loadTestBundle(t)
	clf := b.Classifier
	require.Equal(t, [2]int{0, 1}, clf.Classes())
	require.Equal(t, -0.25, clf.Intercept())

	zero := make([]float64, clf.NumFeatures())
	require.Equal(t, -0.25, clf.Decision(zero))
	require.Equal(t, 0, clf.Predict(zero))

	x := b.Vectorizer.Transform("tech compani launch new product")
	require.InDelta(t, 1.25, clf.Decision(x), 1e-9)
	require.Equal(t, 1, clf.Predict(x))

	require.Equal(t, 0, clf.Class(0), "zero decision selects the first class")
	require.InDelta(t, 0.5, Probability(0), 1e-12)
}

func TestNewLinearClassifier_Shapes(t *testing.T) {
	flat, err := DecodeClassifier([]byte(`{"coef":[1,2],"intercept":0.5,"classes":[-1,1]}`))
	require.NoError(t, err)
	clf, err := NewLinearClassifier(flat)
	require.NoError(t, err)
	require.Equal(t, 2, clf.NumFeatures())
	require.Equal(t, [2]int{-1, 1}, clf.Classes())

	noClasses, err := DecodeClassifier([]byte(`{"coef":[[1]],"intercept":[0]}`))
	require.NoError(t, err)
	clf, err = NewLinearClassifier(noClasses)
	require.NoError(t, err)
	require.Equal(t, [2]int{0, 1}, clf.Classes())

	bad := []string{
		`{"coef":[[1],[2]],"intercept":[0,0]}`,
		`{"coef":[],"intercept":0}`,
		`{"coef":[1],"intercept":[0,1]}`,
		`{"coef":[1],"intercept":0,"classes":[1,1]}`,
		`{"coef":[1],"intercept":0,"classes":[0,1,2]}`,
	}
	for _, raw := range bad {
		a, err := DecodeClassifier([]byte(raw))
		require.NoError(t, err, raw)
		_, err = NewLinearClassifier(a)
		require.ErrorIs(t, err, ErrArtifactCorrupt, raw)
	}

	_, err = DecodeClassifier([]byte(`{"coef":"x"}`))
	require.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestNewLinearClassifier_NonFiniteIntercept(t *testing.T) {
	for _, b := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewLinearClassifier(ClassifierArtifact{Coef: Weights{{1}}, Intercept: Weights{{b}}})
		require.ErrorIs(t, err, ErrArtifactCorrupt, b)
	}
}

func TestNewBundle_Mismatch(t *testing.T) {
	vec, err := NewCountVectorizer(VectorizerArtifact{Vocabulary: map[string]int{"aa": 0, "bb": 1}})
	require.NoError(t, err)
	clf, err := NewLinearClassifier(ClassifierArtifact{Coef: Weights{{1, 2, 3}}, Intercept: Weights{{0}}})
	require.NoError(t, err)

	_, err = NewBundle(vec, clf)
	require.ErrorIs(t, err, ErrArtifactMismatch)
}

func TestBundle_Fingerprint(t *testing.T) {
	build := func(vocab map[string]int, coef []float64, intercept float64) *Bundle {
		t.Helper()
		vec, err := NewCountVectorizer(VectorizerArtifact{Vocabulary: vocab})
		require.NoError(t, err)
		clf, err := NewLinearClassifier(ClassifierArtifact{Coef: Weights{coef}, Intercept: Weights{{intercept}}})
		require.NoError(t, err)
		b, err := NewBundle(vec, clf)
		require.NoError(t, err)
		return b
	}
	vocab := map[string]int{"aa": 0, "bb": 1}

	base := build(vocab, []float64{1, 2}, 0.5)
	require.NotEmpty(t, base.Fingerprint())
	require.Equal(t, base.Fingerprint(), build(map[string]int{"aa": 0, "bb": 1}, []float64{1, 2}, 0.5).Fingerprint())
	require.NotEqual(t, base.Fingerprint(), build(vocab, []float64{1, 2}, -0.5).Fingerprint())
	require.NotEqual(t, base.Fingerprint(), build(vocab, []float64{2, 1}, 0.5).Fingerprint())
	require.NotEqual(t, base.Fingerprint(), build(map[string]int{"aa": 0, "cc": 1}, []float64{1, 2}, 0.5).Fingerprint())
}

func TestSource_Read(t *testing.T) {
	ctx := context.Background()
	src := NewSource()

	_, err := src.Read(ctx, filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrArtifactMissing)

	_, err = src.Read(ctx, "")
	require.ErrorIs(t, err, ErrArtifactMissing)

	_, err = src.Read(ctx, "redis://newssignal:vectorizer")
	require.ErrorIs(t, err, ErrArtifactMissing)

	body, err := os.ReadFile(filepath.Join("testdata", "vectorizer.json"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectorizer.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	got, err := src.Read(ctx, srv.URL+"/vectorizer.json")
	require.NoError(t, err)
	require.Equal(t, body, got)

	_, err = src.Read(ctx, srv.URL+"/classifier.json")
	require.ErrorIs(t, err, ErrArtifactMissing)
}

func TestSource_LoadBundleCorrupt(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "vectorizer.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))

	_, err := NewSource().LoadBundle(context.Background(), broken, filepath.Join("testdata", "classifier.json"))
	require.ErrorIs(t, err, ErrArtifactCorrupt)
}
