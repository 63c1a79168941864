package model

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTokenPattern is scikit-learn's CountVectorizer default: runs of two or more word characters.
const DefaultTokenPattern = `\b\w\w+\b`

// CountVectorizer maps text onto a fitted vocabulary as a bag-of-words count vector.
// It is immutable after construction and safe for concurrent use.
type CountVectorizer struct {
	vocab     map[string]int
	terms     []string
	lowercase bool
	token     *regexp.Regexp
	minN      int
	maxN      int
}

// NewCountVectorizer validates a fitted vectorizer artifact.
func NewCountVectorizer(a VectorizerArtifact) (*CountVectorizer, error) {
	if len(a.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrArtifactCorrupt)
	}
	terms := make([]string, len(a.Vocabulary))
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(terms) {
			return nil, fmt.Errorf("%w: term %q has index %d outside [0,%d)", ErrArtifactCorrupt, term, idx, len(terms))
		}
		if terms[idx] != "" {
			return nil, fmt.Errorf("%w: index %d assigned to %q and %q", ErrArtifactCorrupt, idx, terms[idx], term)
		}
		terms[idx] = term
	}

	pattern := a.TokenPattern
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	// Python's (?u) flag has no RE2 equivalent; headlines are ASCII after normalization.
	pattern = strings.TrimPrefix(pattern, "(?u)")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: token pattern: %v", ErrArtifactCorrupt, err)
	}

	minN, maxN := 1, 1
	if len(a.NGramRange) == 2 {
		minN, maxN = a.NGramRange[0], a.NGramRange[1]
	} else if len(a.NGramRange) != 0 {
		return nil, fmt.Errorf("%w: ngram_range must have two entries", ErrArtifactCorrupt)
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("%w: invalid ngram_range [%d,%d]", ErrArtifactCorrupt, minN, maxN)
	}

	lowercase := true
	if a.Lowercase != nil {
		lowercase = *a.Lowercase
	}

	vocab := make(map[string]int, len(a.Vocabulary))
	for term, idx := range a.Vocabulary {
		vocab[term] = idx
	}

	return &CountVectorizer{
		vocab:     vocab,
		terms:     terms,
		lowercase: lowercase,
		token:     re,
		minN:      minN,
		maxN:      maxN,
	}, nil
}

// Size is the fixed feature vector length.
func (v *CountVectorizer) Size() int { return len(v.terms) }

// NGramRange returns the fitted n-gram bounds.
func (v *CountVectorizer) NGramRange() (int, int) { return v.minN, v.maxN }

// Term returns the vocabulary term at column idx.
func (v *CountVectorizer) Term(idx int) string { return v.terms[idx] }

// Index returns the column of term, if in vocabulary.
func (v *CountVectorizer) Index(term string) (int, bool) {
	idx, ok := v.vocab[term]
	return idx, ok
}

// Transform returns the count vector for text. Empty text yields an all-zero vector.
func (v *CountVectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, term := range v.Analyze(text) {
		if idx, ok := v.vocab[term]; ok {
			vec[idx]++
		}
	}
	return vec
}

// Analyze returns the terms (tokens or n-grams) extracted from text, including
// out-of-vocabulary ones.
func (v *CountVectorizer) Analyze(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	tokens := v.token.FindAllString(text, -1)
	if v.maxN == 1 {
		return tokens
	}

	var terms []string
	if v.minN == 1 {
		terms = append(terms, tokens...)
	}
	lo := v.minN
	if lo == 1 {
		lo = 2
	}
	for n := lo; n <= v.maxN && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
