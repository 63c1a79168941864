package service

import "NewsSignal/internal/domain/models"

// Predictor maps a raw headline to a movement label.
type Predictor interface {
	Predict(headline string) models.Label
	// Preprocess returns the stemmed text the vectorizer sees; equal outputs predict equally.
	Preprocess(headline string) string
	// PredictText labels the output of Preprocess.
	PredictText(text string) models.Label
	Analyze(headline string) models.Prediction
	Info() models.ModelInfo
}

// LanguageDetector tags text with an ISO 639-3 language code.
type LanguageDetector interface {
	Detect(text string) string
}
