package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/require"

	"NewsSignal/internal/domain/models"
	"NewsSignal/pkg/config"
)

type fakeAnalyzer map[string]models.Prediction

func (f fakeAnalyzer) Analyze(h string) models.Prediction { return f[h] }

func TestRender(t *testing.T) {
	color.Disable()
	a := fakeAnalyzer{
		"Stocks rally": {Stems: []string{"stock", "ralli"}, Decision: 0.7, Label: models.LabelUp},
	}

	var buf bytes.Buffer
	n := render(&buf, a, []string{"Stocks rally", "   "})
	require.Equal(t, 1, n)

	out := buf.String()
	require.Contains(t, out, "Please enter a headline")
	require.Contains(t, out, "stock ralli")
	require.Contains(t, out, "0.7000")
	require.Contains(t, out, "UP")
}

func TestRender_OnlyBlank(t *testing.T) {
	color.Disable()
	var buf bytes.Buffer
	require.Zero(t, render(&buf, fakeAnalyzer{}, []string{""}))
	require.Equal(t, 1, strings.Count(buf.String(), "Please enter a headline"))
}

func TestReadLines(t *testing.T) {
	require.Equal(t, []string{"a", "", "b"}, readLines(strings.NewReader("a\n\nb\n")))
}

func TestRun_ReleasesResources(t *testing.T) {
	color.Disable()
	a := fakeAnalyzer{"Stocks rally": {Stems: []string{"stock", "ralli"}, Label: models.LabelUp}}
	released := 0
	load := func(*config.Config) (analyzer, func(), error) {
		return a, func() { released++ }, nil
	}

	var out bytes.Buffer
	require.Equal(t, 0, run(&config.Config{}, []string{"Stocks rally"}, strings.NewReader(""), &out, load))
	require.Equal(t, 1, released)

	require.Equal(t, 1, run(&config.Config{}, nil, strings.NewReader("\n  \n"), &out, load))
	require.Equal(t, 2, released, "cleanup runs when nothing is labeled")

	failing := func(*config.Config) (analyzer, func(), error) { return nil, nil, errors.New("no artifacts") }
	require.Equal(t, 1, run(&config.Config{}, []string{"x"}, strings.NewReader(""), &out, failing))
	require.Equal(t, 2, released)
}
