package model

import (
	"fmt"
	"math"
)

// LinearClassifier is a fitted binary linear model (logistic regression weights).
// It is immutable after construction and safe for concurrent use.
type LinearClassifier struct {
	coef      []float64
	intercept float64
	classes   [2]int
}

// NewLinearClassifier validates a fitted classifier artifact.
func NewLinearClassifier(a ClassifierArtifact) (*LinearClassifier, error) {
	coef, err := a.Coef.Row()
	if err != nil {
		return nil, fmt.Errorf("%w: coef: %v", ErrArtifactCorrupt, err)
	}
	if len(coef) == 0 {
		return nil, fmt.Errorf("%w: empty coef", ErrArtifactCorrupt)
	}
	intercept, err := a.Intercept.Scalar()
	if err != nil {
		return nil, fmt.Errorf("%w: intercept: %v", ErrArtifactCorrupt, err)
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrArtifactCorrupt)
	}
	classes := [2]int{0, 1}
	switch len(a.Classes) {
	case 0:
	case 2:
		if a.Classes[0] == a.Classes[1] {
			return nil, fmt.Errorf("%w: duplicate class %d", ErrArtifactCorrupt, a.Classes[0])
		}
		classes = [2]int{a.Classes[0], a.Classes[1]}
	default:
		return nil, fmt.Errorf("%w: expected 2 classes, got %d", ErrArtifactCorrupt, len(a.Classes))
	}
	for i, w := range coef {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: coef[%d] is not finite", ErrArtifactCorrupt, i)
		}
	}

	w := make([]float64, len(coef))
	copy(w, coef)
	return &LinearClassifier{coef: w, intercept: intercept, classes: classes}, nil
}

// NumFeatures is the expected feature vector length.
func (c *LinearClassifier) NumFeatures() int { return len(c.coef) }

// Classes returns the negative and positive class labels.
func (c *LinearClassifier) Classes() [2]int { return c.classes }

// Intercept returns the fitted bias.
func (c *LinearClassifier) Intercept() float64 { return c.intercept }

// Weight returns the coefficient at column idx.
func (c *LinearClassifier) Weight(idx int) float64 { return c.coef[idx] }

// Decision returns w·x + b. x must have NumFeatures entries; the pipeline
// guarantees this by validating artifacts at startup.
func (c *LinearClassifier) Decision(x []float64) float64 {
	s := c.intercept
	for i, v := range x {
		if v != 0 {
			s += c.coef[i] * v
		}
	}
	return s
}

// Class maps a decision score to a class: positive scores select the second class.
func (c *LinearClassifier) Class(decision float64) int {
	if decision > 0 {
		return c.classes[1]
	}
	return c.classes[0]
}

// Predict returns the class for x.
func (c *LinearClassifier) Predict(x []float64) int {
	return c.Class(c.Decision(x))
}

// Probability returns the logistic probability of the second class.
func Probability(decision float64) float64 {
	return 1 / (1 + math.Exp(-decision))
}
