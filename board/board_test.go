package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens5x5() []string {
	return []string{
		"A", "B", "A", "C", "A",
		"D", "E", "F", "G", "H",
		"I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R",
		"S", "T", "U", "V", "W",
	}
}

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := New(5, 5, tokens5x5())
	require.NoError(t, err)
	return b
}

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := New(0, 3, nil)
	assert.ErrorIs(t, err, ErrBadArgument)

	_, err = New(2, 2, []string{"A", "B", "C"})
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestNewRejectsInvalidTokens(t *testing.T) {
	_, err := New(1, 2, []string{"A", ""})
	assert.ErrorIs(t, err, ErrBadArgument)

	_, err = New(1, 2, []string{"A", "has space"})
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestViewRejectsBlankViewer(t *testing.T) {
	b := newTestBoard(t)
	_, err := b.View("")
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = b.View("   ")
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestViewInitialStateIsAllFaceDown(t *testing.T) {
	b := newTestBoard(t)
	rendering, err := b.View("alice")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(rendering, "\n"), "\n")
	require.Len(t, lines, 26)
	assert.Equal(t, "5x5", lines[0])
	for _, line := range lines[1:] {
		assert.Equal(t, "down", line)
	}
}

func TestViewLineCountMatchesDimensions(t *testing.T) {
	b, err := New(2, 3, []string{"A", "A", "B", "B", "C", "C"})
	require.NoError(t, err)
	rendering, err := b.View("anyone")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(rendering, "\n"), "\n")
	assert.Len(t, lines, 2*3+1)
	assert.Equal(t, "2x3", lines[0])
}
