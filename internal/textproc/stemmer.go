package textproc

import (
	"errors"
	"fmt"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"github.com/kljensen/snowball/english"
	"github.com/samber/lo"
)

// ErrUnknownStemmer is returned for an unsupported stemmer mode.
var ErrUnknownStemmer = errors.New("unknown stemmer mode")

// Stemmer modes. ModeNLTK must match the stemmer used when the vocabulary was fitted.
const (
	ModeNLTK     = "nltk"
	ModeOriginal = "original"
	ModePorter2  = "porter2"
)

// Stemmer reduces a lowercase alphabetic token to its stem.
type Stemmer interface {
	Stem(token string) string
	Mode() string
}

// StemFunc adapts a plain function to Stemmer.
type StemFunc struct {
	mode string
	fn   func(string) string
}

func (s StemFunc) Stem(token string) string { return s.fn(token) }

func (s StemFunc) Mode() string { return s.mode }

// NewStemmer returns the stemmer for mode. An empty mode selects ModeNLTK.
func NewStemmer(mode string) (Stemmer, error) {
	switch mode {
	case "", ModeNLTK:
		return StemFunc{mode: ModeNLTK, fn: PorterStem}, nil
	case ModeOriginal:
		return StemFunc{mode: ModeOriginal, fn: porterstemmer.StemString}, nil
	case ModePorter2:
		return StemFunc{mode: ModePorter2, fn: func(t string) string {
			return english.Stem(t, true)
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStemmer, mode)
	}
}

// StemAll stems every token, keeping length and order.
func StemAll(s Stemmer, tokens []string) []string {
	return lo.Map(tokens, func(t string, _ int) string { return s.Stem(t) })
}
