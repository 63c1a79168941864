package models

import "time"

// Prediction is the full breakdown of one pipeline run.
type Prediction struct {
	Headline    string             `json:"headline"`
	Tokens      []string           `json:"tokens"`
	Filtered    []string           `json:"filtered"`
	Stems       []string           `json:"stems"`
	Text        string             `json:"text"`
	Features    map[string]float64 `json:"features"`
	OOV         int                `json:"oov"`
	Decision    float64            `json:"decision"`
	Probability float64            `json:"probability"`
	Class       int                `json:"class"`
	Label       Label              `json:"label"`
	Language    string             `json:"language,omitempty"`
}

// PredictionRecord is the audit row written for every streamed headline.
type PredictionRecord struct {
	ID          string    `json:"id"`
	HeadlineID  string    `json:"headline_id"`
	Source      string    `json:"source"`
	Headline    string    `json:"headline"`
	Symbols     []string  `json:"symbols,omitempty"`
	Label       Label     `json:"label"`
	Decision    float64   `json:"decision"`
	Probability float64   `json:"probability"`
	Language    string    `json:"language,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	PredictedAt time.Time `json:"predicted_at"`
}

// ModelInfo describes the loaded artifacts.
type ModelInfo struct {
	VocabularySize int     `json:"vocabulary_size"`
	Classes        [2]int  `json:"classes"`
	UpClass        int     `json:"up_class"`
	Intercept      float64 `json:"intercept"`
	StemmerMode    string  `json:"stemmer_mode"`
	NGramRange     [2]int  `json:"ngram_range"`
	Stopwords      int     `json:"stopwords"`
	Fingerprint    string  `json:"fingerprint"`
}
