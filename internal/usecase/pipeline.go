package usecase

import (
	"fmt"
	"strings"

	"NewsSignal/internal/domain/models"
	dsvc "NewsSignal/internal/domain/service"
	"NewsSignal/internal/services/model"
	"NewsSignal/internal/textproc"
)

// Pipeline turns a headline into a movement label: normalize, drop stopwords,
// stem, vectorize and classify. It holds only immutable state and is safe for
// concurrent use without locking.
type Pipeline struct {
	stopwords *textproc.StopwordSet
	stemmer   textproc.Stemmer
	bundle    *model.Bundle
	upClass   int

	// fingerprint changes whenever the artifacts, stemmer or up class do.
	fingerprint string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithUpClass sets the classifier class reported as UP.
func WithUpClass(class int) PipelineOption {
	return func(p *Pipeline) { p.upClass = class }
}

// NewPipeline wires the text processing steps to a validated model bundle.
func NewPipeline(stopwords *textproc.StopwordSet, stemmer textproc.Stemmer, bundle *model.Bundle, opts ...PipelineOption) (*Pipeline, error) {
	if stopwords == nil || stopwords.Len() == 0 {
		return nil, textproc.ErrStopwordsUnavailable
	}
	if stemmer == nil {
		return nil, fmt.Errorf("%w: nil stemmer", textproc.ErrUnknownStemmer)
	}
	if bundle == nil {
		return nil, fmt.Errorf("%w: nil bundle", model.ErrArtifactMissing)
	}
	p := &Pipeline{stopwords: stopwords, stemmer: stemmer, bundle: bundle, upClass: 1}
	for _, opt := range opts {
		opt(p)
	}
	if classes := bundle.Classifier.Classes(); p.upClass != classes[0] && p.upClass != classes[1] {
		return nil, fmt.Errorf("%w: up class %d not in classifier classes %v", model.ErrArtifactMismatch, p.upClass, classes)
	}
	p.fingerprint = fmt.Sprintf("%s-%s-%d", bundle.Fingerprint(), stemmer.Mode(), p.upClass)
	return p, nil
}

// Preprocess returns the stemmed text fed to the vectorizer.
func (p *Pipeline) Preprocess(headline string) string {
	return strings.Join(textproc.StemAll(p.stemmer, p.stopwords.Filter(textproc.Normalize(headline))), " ")
}

// Predict classifies one headline. Text that normalizes to nothing is scored
// on the intercept alone.
func (p *Pipeline) Predict(headline string) models.Label {
	return p.PredictText(p.Preprocess(headline))
}

// PredictText classifies text already produced by Preprocess.
func (p *Pipeline) PredictText(text string) models.Label {
	x := p.bundle.Vectorizer.Transform(text)
	return p.label(p.bundle.Classifier.Predict(x))
}

// Analyze runs the same steps as Predict and keeps every intermediate.
func (p *Pipeline) Analyze(headline string) models.Prediction {
	vec, clf := p.bundle.Vectorizer, p.bundle.Classifier

	tokens := textproc.Normalize(headline)
	filtered := p.stopwords.Filter(tokens)
	stems := textproc.StemAll(p.stemmer, filtered)
	text := strings.Join(stems, " ")

	x := vec.Transform(text)
	features := make(map[string]float64)
	for i, v := range x {
		if v != 0 {
			features[vec.Term(i)] = v
		}
	}
	oov := 0
	for _, term := range vec.Analyze(text) {
		if _, ok := vec.Index(term); !ok {
			oov++
		}
	}

	decision := clf.Decision(x)
	class := clf.Class(decision)
	return models.Prediction{
		Headline:    headline,
		Tokens:      tokens,
		Filtered:    filtered,
		Stems:       stems,
		Text:        text,
		Features:    features,
		OOV:         oov,
		Decision:    decision,
		Probability: model.Probability(decision),
		Class:       class,
		Label:       p.label(class),
	}
}

// Info describes the loaded model.
func (p *Pipeline) Info() models.ModelInfo {
	minN, maxN := p.bundle.Vectorizer.NGramRange()
	return models.ModelInfo{
		VocabularySize: p.bundle.Vectorizer.Size(),
		Classes:        p.bundle.Classifier.Classes(),
		UpClass:        p.upClass,
		Intercept:      p.bundle.Classifier.Intercept(),
		StemmerMode:    p.stemmer.Mode(),
		NGramRange:     [2]int{minN, maxN},
		Stopwords:      p.stopwords.Len(),
		Fingerprint:    p.fingerprint,
	}
}

func (p *Pipeline) label(class int) models.Label {
	if class == p.upClass {
		return models.LabelUp
	}
	return models.LabelDownOrFlat
}

var _ dsvc.Predictor = (*Pipeline)(nil)
