package textproc

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

// ErrStopwordsUnavailable is returned when the stopword source is missing or empty.
var ErrStopwordsUnavailable = errors.New("stopwords unavailable")

//go:embed data/english.txt
var englishStopwords []byte

// StopwordSet is an immutable set of stopwords for one language.
type StopwordSet struct {
	words map[string]struct{}
}

// DefaultStopwords returns the bundled English list (the NLTK corpus the model was fitted with).
func DefaultStopwords() (*StopwordSet, error) {
	return ReadStopwords(bytes.NewReader(englishStopwords))
}

// LoadStopwords reads one stopword per line from path. An empty path selects the bundled list.
func LoadStopwords(path string) (*StopwordSet, error) {
	if path == "" {
		return DefaultStopwords()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStopwordsUnavailable, err)
	}
	defer f.Close()
	return ReadStopwords(f)
}

// ReadStopwords parses a newline separated list. Blank lines and '#' comments are skipped.
func ReadStopwords(r io.Reader) (*StopwordSet, error) {
	words := make(map[string]struct{})
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		w := strings.ToLower(strings.TrimSpace(scan.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words[w] = struct{}{}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStopwordsUnavailable, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrStopwordsUnavailable)
	}
	return &StopwordSet{words: words}, nil
}

// NewStopwordSet builds a set from the given words.
func NewStopwordSet(words ...string) *StopwordSet {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return &StopwordSet{words: m}
}

// Contains reports whether token is a stopword.
func (s *StopwordSet) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of stopwords.
func (s *StopwordSet) Len() int { return len(s.words) }

// Filter removes any token present in the set, keeping relative order.
func (s *StopwordSet) Filter(tokens []string) []string {
	return lo.Filter(tokens, func(t string, _ int) bool {
		return !s.Contains(t)
	})
}
