package model

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
)

// Bundle pairs a vectorizer with the classifier fitted on its output.
type Bundle struct {
	Vectorizer *CountVectorizer
	Classifier *LinearClassifier

	fingerprint string
}

// NewBundle checks that the classifier expects exactly the vectorizer's feature count.
func NewBundle(vec *CountVectorizer, clf *LinearClassifier) (*Bundle, error) {
	if vec == nil || clf == nil {
		return nil, fmt.Errorf("%w: vectorizer and classifier are required", ErrArtifactMissing)
	}
	if vec.Size() != clf.NumFeatures() {
		return nil, fmt.Errorf("%w: vocabulary has %d terms, classifier has %d weights",
			ErrArtifactMismatch, vec.Size(), clf.NumFeatures())
	}
	b := &Bundle{Vectorizer: vec, Classifier: clf}
	b.fingerprint = b.hash()
	return b, nil
}

// Fingerprint identifies the fitted artifacts. Bundles that score every text
// alike share a fingerprint.
func (b *Bundle) Fingerprint() string { return b.fingerprint }

func (b *Bundle) hash() string {
	h := fnv.New64a()
	var buf [8]byte
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	minN, maxN := b.Vectorizer.NGramRange()
	classes := b.Classifier.Classes()
	fmt.Fprintf(h, "%d:%d:%d:%d|", minN, maxN, classes[0], classes[1])
	putFloat(b.Classifier.Intercept())
	for i := 0; i < b.Vectorizer.Size(); i++ {
		h.Write([]byte(b.Vectorizer.Term(i)))
		h.Write([]byte{0})
		putFloat(b.Classifier.Weight(i))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
