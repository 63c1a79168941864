package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrArtifactMissing is returned when an artifact source cannot be found or read.
	ErrArtifactMissing = errors.New("model artifact missing")
	// ErrArtifactCorrupt is returned when an artifact cannot be decoded or is internally inconsistent.
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
	// ErrArtifactMismatch is returned when vectorizer and classifier disagree on feature count.
	ErrArtifactMismatch = errors.New("model artifacts mismatch")
)

// VectorizerArtifact is the JSON export of a fitted CountVectorizer.
type VectorizerArtifact struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
	NGramRange   []int          `json:"ngram_range,omitempty"`
}

// ClassifierArtifact is the JSON export of a fitted binary linear classifier.
type ClassifierArtifact struct {
	Coef      Weights `json:"coef"`
	Intercept Weights `json:"intercept"`
	Classes   []int   `json:"classes,omitempty"`
}

// Weights accepts a flat array, a single-row nested array, or a bare number.
type Weights [][]float64

func (w *Weights) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = nil
		return nil
	}

	switch data[0] {
	case '[':
		var nested [][]float64
		if err := json.Unmarshal(data, &nested); err == nil {
			*w = nested
			return nil
		}
		var flat []float64
		if err := json.Unmarshal(data, &flat); err != nil {
			return err
		}
		*w = Weights{flat}
	default:
		var scalar float64
		if err := json.Unmarshal(data, &scalar); err != nil {
			return err
		}
		*w = Weights{{scalar}}
	}
	return nil
}

// Row returns the single weight row; binary models export exactly one.
func (w Weights) Row() ([]float64, error) {
	if len(w) != 1 {
		return nil, fmt.Errorf("expected 1 row, got %d", len(w))
	}
	return w[0], nil
}

// Scalar returns the single value held by w.
func (w Weights) Scalar() (float64, error) {
	row, err := w.Row()
	if err != nil {
		return 0, err
	}
	if len(row) != 1 {
		return 0, fmt.Errorf("expected 1 value, got %d", len(row))
	}
	return row[0], nil
}

// DecodeVectorizer parses a vectorizer artifact.
func DecodeVectorizer(data []byte) (VectorizerArtifact, error) {
	var a VectorizerArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("%w: vectorizer: %v", ErrArtifactCorrupt, err)
	}
	return a, nil
}

// DecodeClassifier parses a classifier artifact.
func DecodeClassifier(data []byte) (ClassifierArtifact, error) {
	var a ClassifierArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("%w: classifier: %v", ErrArtifactCorrupt, err)
	}
	return a, nil
}
