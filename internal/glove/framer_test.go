package glove

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameCapture struct {
	records   []string
	fragments []string
}

func (c *frameCapture) newFramer(threshold int) *Framer {
	return NewFramer(threshold,
		func(r string) { c.records = append(c.records, r) },
		func(f string) { c.fragments = append(c.fragments, f) },
	)
}

func TestFramerSplitsOnAnyLineEnding(t *testing.T) {
	var c frameCapture
	f := c.newFramer(0)

	f.Feed("um\ndois\rtres\r\nquatro")

	assert.Equal(t, []string{"um", "dois", "tres"}, c.records)
	assert.Empty(t, c.fragments)

	f.Feed("\n")
	assert.Equal(t, []string{"um", "dois", "tres", "quatro"}, c.records)
}

func TestFramerByteAtATimeMatchesWholeInput(t *testing.T) {
	input := "I (42) WIFI: connected\r\nprompt> eco\nFUSION q:[1,0,0,0]\r\n"

	var whole frameCapture
	whole.newFramer(0).Feed(input)

	var piecewise frameCapture
	f := piecewise.newFramer(0)
	for _, b := range []byte(input) {
		f.Feed(string(b))
	}

	require.Equal(t, whole.records, piecewise.records)
	assert.Empty(t, whole.fragments)
	assert.Empty(t, piecewise.fragments)
}

func TestFramerForceFlushesLongResidual(t *testing.T) {
	var c frameCapture
	f := c.newFramer(16)

	long := strings.Repeat("x", 17)
	f.Feed(long)

	require.Len(t, c.fragments, 1)
	assert.Equal(t, long, c.fragments[0])

	// O buffer foi esvaziado: o próximo pedaço curto não reemite nada
	f.Feed("ok")
	assert.Len(t, c.fragments, 1)
	assert.Empty(t, c.records)
}

func TestFramerFlushEmitsResidualOnce(t *testing.T) {
	var c frameCapture
	f := c.newFramer(0)

	f.Feed("resto sem terminador")
	f.Flush()
	f.Flush()

	require.Equal(t, []string{"resto sem terminador"}, c.fragments)
	assert.Empty(t, c.records)
}

func TestFramerFlushWithEmptyBufferIsNoop(t *testing.T) {
	var c frameCapture
	f := c.newFramer(0)

	f.Feed("linha completa\n")
	f.Flush()

	assert.Equal(t, []string{"linha completa"}, c.records)
	assert.Empty(t, c.fragments)
}
