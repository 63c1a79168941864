package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	httpx "NewsSignal/pkg/http"
)

const redisScheme = "redis://"

// Source reads raw artifact bytes from a file path, an http(s) URL or a redis key.
type Source struct {
	http  *httpx.Client
	redis redis.UniversalClient
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *httpx.Client) SourceOption {
	return func(s *Source) { s.http = c }
}

// WithRedis enables redis://<key> locations.
func WithRedis(c redis.UniversalClient) SourceOption {
	return func(s *Source) { s.redis = c }
}

// NewSource builds a Source.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{}
	for _, opt := range opts {
		opt(s)
	}
	if s.http == nil {
		s.http = httpx.NewClient()
	}
	return s
}

// Read returns the bytes stored at location.
func (s *Source) Read(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrArtifactMissing)
	}

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		var body []byte
		err := s.http.SendAndParse(ctx, &httpx.RequestOptions{Method: httpx.MethodGet, URL: location}, &body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, location, err)
		}
		return body, nil

	case strings.HasPrefix(location, redisScheme):
		if s.redis == nil {
			return nil, fmt.Errorf("%w: %s: redis is not configured", ErrArtifactMissing, location)
		}
		key := strings.TrimPrefix(location, redisScheme)
		body, err := s.redis.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, fmt.Errorf("%w: redis key %q not found", ErrArtifactMissing, key)
			}
			return nil, fmt.Errorf("%w: redis key %q: %v", ErrArtifactMissing, key, err)
		}
		return body, nil

	default:
		body, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArtifactMissing, err)
		}
		return body, nil
	}
}

// LoadBundle reads, decodes and validates both artifacts.
func (s *Source) LoadBundle(ctx context.Context, vectorizerLoc, classifierLoc string) (*Bundle, error) {
	raw, err := s.Read(ctx, vectorizerLoc)
	if err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}
	va, err := DecodeVectorizer(raw)
	if err != nil {
		return nil, err
	}
	vec, err := NewCountVectorizer(va)
	if err != nil {
		return nil, err
	}

	raw, err = s.Read(ctx, classifierLoc)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	ca, err := DecodeClassifier(raw)
	if err != nil {
		return nil, err
	}
	clf, err := NewLinearClassifier(ca)
	if err != nil {
		return nil, err
	}

	return NewBundle(vec, clf)
}
