package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"NewsSignal/internal/domain/models"
	"NewsSignal/internal/services/model"
	"NewsSignal/internal/textproc"
)

var testVocabulary = map[string]int{
	"compani": 0,
	"crash":   1,
	"fall":    2,
	"launch":  3,
	"new":     4,
	"product": 5,
	"ralli":   6,
	"stock":   7,
	"tech":    8,
}

func newTestPipeline(t *testing.T, intercept float64, opts ...PipelineOption) *Pipeline {
	t.Helper()
	vec, err := model.NewCountVectorizer(model.VectorizerArtifact{Vocabulary: testVocabulary})
	require.NoError(t, err)
	clf, err := model.NewLinearClassifier(model.ClassifierArtifact{
		Coef:      model.Weights{{0.2, -1.5, -1.1, 0.5, 0.1, 0.3, 0.9, 0.05, 0.4}},
		Intercept: model.Weights{{intercept}},
		Classes:   []int{0, 1},
	})
	require.NoError(t, err)
	bundle, err := model.NewBundle(vec, clf)
	require.NoError(t, err)

	stop, err := textproc.DefaultStopwords()
	require.NoError(t, err)
	stem, err := textproc.NewStemmer(textproc.ModeNLTK)
	require.NoError(t, err)

	p, err := NewPipeline(stop, stem, bundle, opts...)
	require.NoError(t, err)
	return p
}

func TestPipeline_TechLaunch(t *testing.T) {
	p := newTestPipeline(t, -0.25)

	res := p.Analyze("Tech company launches new product")
	require.Equal(t, []string{"tech", "company", "launches", "new", "product"}, res.Tokens)
	require.Equal(t, res.Tokens, res.Filtered)
	require.Equal(t, []string{"tech", "compani", "launch", "new", "product"}, res.Stems)
	require.Equal(t, "tech compani launch new product", res.Text)
	require.Len(t, res.Features, 5)
	require.Zero(t, res.OOV)
	require.InDelta(t, 1.25, res.Decision, 1e-9)
	require.Equal(t, 1, res.Class)
	require.Equal(t, models.LabelUp, res.Label)
	require.Equal(t, models.LabelUp, p.Predict("Tech company launches new product"))
}

func TestPipeline_EmptyInputUsesIntercept(t *testing.T) {
	tests := []struct {
		name      string
		intercept float64
		expected  models.Label
	}{
		{"negative bias", -0.25, models.LabelDownOrFlat},
		{"zero bias", 0, models.LabelDownOrFlat},
		{"positive bias", 0.25, models.LabelUp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPipeline(t, tc.intercept)
			for _, in := range []string{"", "   ", "###???!!!", "the of and is"} {
				res := p.Analyze(in)
				require.Empty(t, res.Stems, in)
				require.Empty(t, res.Features, in)
				require.Equal(t, tc.intercept, res.Decision, in)
				require.Equal(t, tc.expected, p.Predict(in), in)
			}
		})
	}
}

func TestPipeline_RepeatedTermsCount(t *testing.T) {
	p := newTestPipeline(t, -0.25)

	res := p.Analyze("stocks stocks stocks rally")
	require.Equal(t, map[string]float64{"stock": 3, "ralli": 1}, res.Features)
	require.InDelta(t, 0.8, res.Decision, 1e-9)
	require.Equal(t, models.LabelUp, res.Label)
}

func TestPipeline_CaseAndPunctuationVariants(t *testing.T) {
	p := newTestPipeline(t, -0.25)

	a := p.Analyze("Tech Giant Unveils...")
	b := p.Analyze("tech giant unveils...")
	require.Equal(t, a.Tokens, b.Tokens)
	require.Equal(t, a.Label, b.Label)
	require.Equal(t, 2, a.OOV, "giant and unveil are not in the vocabulary")
}

func TestPipeline_Deterministic(t *testing.T) {
	p := newTestPipeline(t, -0.25)
	for _, in := range []string{"Stocks crash as markets fall", "", "Company rally"} {
		require.Equal(t, p.Predict(in), p.Predict(in))
		require.Equal(t, p.Analyze(in), p.Analyze(in))
		require.Equal(t, p.Predict(in), p.PredictText(p.Preprocess(in)))
	}
	require.Equal(t, models.LabelDownOrFlat, p.Predict("Stocks crash as markets fall"))
}

func TestPipeline_UpClassPolarity(t *testing.T) {
	p := newTestPipeline(t, -0.25, WithUpClass(0))

	require.Equal(t, models.LabelDownOrFlat, p.Predict("Tech company launches new product"))
	require.Equal(t, models.LabelUp, p.Predict(""))
	require.Equal(t, 0, p.Info().UpClass)
}

func TestNewPipeline_UpClassMustBeAClass(t *testing.T) {
	vec, err := model.NewCountVectorizer(model.VectorizerArtifact{Vocabulary: map[string]int{"ralli": 0}})
	require.NoError(t, err)
	clf, err := model.NewLinearClassifier(model.ClassifierArtifact{
		Coef:      model.Weights{{5}},
		Intercept: model.Weights{{1}},
		Classes:   []int{-1, 2},
	})
	require.NoError(t, err)
	bundle, err := model.NewBundle(vec, clf)
	require.NoError(t, err)
	stop, err := textproc.DefaultStopwords()
	require.NoError(t, err)
	stem, err := textproc.NewStemmer(textproc.ModeNLTK)
	require.NoError(t, err)

	_, err = NewPipeline(stop, stem, bundle)
	require.ErrorIs(t, err, model.ErrArtifactMismatch)

	p, err := NewPipeline(stop, stem, bundle, WithUpClass(2))
	require.NoError(t, err)
	require.Equal(t, models.LabelUp, p.Predict("Stocks rally"))
	require.Equal(t, models.LabelUp, p.Predict(""))
}

func TestPipeline_Info(t *testing.T) {
	info := newTestPipeline(t, -0.25).Info()
	require.Equal(t, 9, info.VocabularySize)
	require.Equal(t, [2]int{0, 1}, info.Classes)
	require.Equal(t, textproc.ModeNLTK, info.StemmerMode)
	require.Equal(t, [2]int{1, 1}, info.NGramRange)
	require.Equal(t, 179, info.Stopwords)
	require.NotEmpty(t, info.Fingerprint)

	require.Equal(t, info.Fingerprint, newTestPipeline(t, -0.25).Info().Fingerprint)
	require.NotEqual(t, info.Fingerprint, newTestPipeline(t, 0.25).Info().Fingerprint)
	require.NotEqual(t, info.Fingerprint, newTestPipeline(t, -0.25, WithUpClass(0)).Info().Fingerprint)
}

func TestNewPipeline_RequiresComponents(t *testing.T) {
	stem, err := textproc.NewStemmer("")
	require.NoError(t, err)

	_, err = NewPipeline(nil, stem, nil)
	require.ErrorIs(t, err, textproc.ErrStopwordsUnavailable)

	_, err = NewPipeline(textproc.NewStopwordSet("the"), stem, nil)
	require.ErrorIs(t, err, model.ErrArtifactMissing)
}
