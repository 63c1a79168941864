package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetector(t *testing.T) {
	d := NewDetector(0)
	require.Equal(t, "eng", d.Detect("Technology company launches a new product for the holiday season"))
	require.Equal(t, Unknown, d.Detect(""))

	strict := NewDetector(1.01)
	require.Equal(t, Unknown, strict.Detect("Technology company launches a new product for the holiday season"))
}
