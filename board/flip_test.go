package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spotAt(t *testing.T, b *Board, viewer string, row, col int) string {
	t.Helper()
	rendering, err := b.View(viewer)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(rendering, "\n"), "\n")
	return lines[1+row*b.Cols()+col]
}

func TestFlipRule1B_FirstCardShowsMyVsUp(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))

	assert.Equal(t, "my A", spotAt(t, b, "alice", 0, 0))
	assert.Equal(t, "up A", spotAt(t, b, "bob", 0, 0))
}

func TestFlipRule1D_WaitsForRelease(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))

	bobDone := make(chan error, 1)
	go func() {
		bobDone <- b.Flip(context.Background(), "bob", 0, 0)
	}()

	// Give bob's goroutine a chance to actually block in rule 1-D.
	time.Sleep(20 * time.Millisecond)
	select {
	case <-bobDone:
		t.Fatal("bob's flip should still be pending")
	default:
	}

	// Alice's second flip is a non-match, releasing control of (0,0).
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 1))

	select {
	case err := <-bobDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bob's flip never completed")
	}

	assert.Equal(t, "my A", spotAt(t, b, "bob", 0, 0))
	assert.Equal(t, "up A", spotAt(t, b, "alice", 0, 0))
}

func TestFlipRule2D_MatchRemovesCardsOnNextCleanup(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 2))

	assert.Equal(t, "my A", spotAt(t, b, "alice", 0, 0))
	assert.Equal(t, "my A", spotAt(t, b, "alice", 0, 2))
	assert.Equal(t, "up A", spotAt(t, b, "bob", 0, 0))
	assert.Equal(t, "up A", spotAt(t, b, "bob", 0, 2))

	// Cleanup of the matched turn happens at the start of alice's next flip.
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 1))

	assert.Equal(t, "none", spotAt(t, b, "alice", 0, 0))
	assert.Equal(t, "none", spotAt(t, b, "alice", 0, 2))
	assert.Equal(t, "my B", spotAt(t, b, "alice", 0, 1))
}

func TestFlipRule3B_PreservesControlledCard(t *testing.T) {
	b := newTestBoard(t)
	// Alice flips a non-matching pair.
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))
	err := b.Flip(context.Background(), "alice", 0, 1)
	require.NoError(t, err) // A vs B: no match, but 2-C/2-E never error

	// Bob takes control of (0,0), which alice no longer controls.
	require.NoError(t, b.Flip(context.Background(), "bob", 0, 0))

	// Alice's next flip (cleanup of her non-matching turn) must leave
	// (0,0) face-up, because bob now controls it, and must turn (0,1)
	// face-down, because nobody controls it.
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 2))

	assert.Equal(t, "up A", spotAt(t, b, "alice", 0, 0))
	assert.Equal(t, "down", spotAt(t, b, "alice", 0, 1))
}

func TestFlipRule2B_SelfControlOnOneByOneBoard(t *testing.T) {
	b, err := New(1, 1, []string{"A"})
	require.NoError(t, err)

	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))
	err = b.Flip(context.Background(), "alice", 0, 0)
	assert.ErrorIs(t, err, ErrCardAlreadyControlled)

	assert.Equal(t, "up A", spotAt(t, b, "alice", 0, 0))
	assert.Equal(t, "up A", spotAt(t, b, "bob", 0, 0))
}

func TestFlipRule1A_NoCardAtPosition(t *testing.T) {
	b, err := New(1, 3, []string{"A", "A", "B"})
	require.NoError(t, err)
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 1)) // match
	// Cleanup of alice's own matched turn happens on her next flip.
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 2))
	assert.Equal(t, "none", spotAt(t, b, "bob", 0, 0))

	err = b.Flip(context.Background(), "bob", 0, 0)
	assert.ErrorIs(t, err, ErrNoCardAtPosition)
}

func TestFlipRule2A_NoCardReleasesFirst(t *testing.T) {
	b, err := New(1, 4, []string{"A", "A", "B", "C"})
	require.NoError(t, err)
	require.NoError(t, b.Flip(context.Background(), "bob", 0, 0))
	require.NoError(t, b.Flip(context.Background(), "bob", 0, 1)) // match
	require.NoError(t, b.Flip(context.Background(), "bob", 0, 2))  // cleanup removes (0,0) and (0,1)
	assert.Equal(t, "none", spotAt(t, b, "alice", 0, 0))

	require.NoError(t, b.Flip(context.Background(), "alice", 0, 3)) // first card: C

	// alice's second flip targets the now-vacated position; 2-A fires
	// and releases her first card.
	err = b.Flip(context.Background(), "alice", 0, 0)
	assert.ErrorIs(t, err, ErrNoCardAtPosition)
	assert.Equal(t, "up C", spotAt(t, b, "bob", 0, 3))
}

func TestFlipBadArgument(t *testing.T) {
	b := newTestBoard(t)
	err := b.Flip(context.Background(), "", 0, 0)
	assert.ErrorIs(t, err, ErrBadArgument)

	err = b.Flip(context.Background(), "alice", -1, 0)
	assert.ErrorIs(t, err, ErrBadArgument)

	err = b.Flip(context.Background(), "alice", 0, 100)
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestFlipContextCancelDuringWaitCleansUpWaiter(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	bobDone := make(chan error, 1)
	go func() {
		bobDone <- b.Flip(ctx, "bob", 0, 0)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-bobDone:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("bob's flip never observed cancellation")
	}

	require.NoError(t, b.CheckInvariants())

	// The waiter must have been cleaned up: releasing the card now must
	// not deadlock or leak, and a fresh flip by bob then takes the
	// released card and leaves the board consistent.
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 1))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Flip(context.Background(), "bob", 0, 0)
	}()
	wg.Wait()
	require.NoError(t, b.CheckInvariants())
}

func TestFlipCancelledByReset(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))

	bobDone := make(chan error, 1)
	go func() {
		bobDone <- b.Flip(context.Background(), "bob", 0, 0)
	}()
	time.Sleep(20 * time.Millisecond)

	b.Reset()

	select {
	case err := <-bobDone:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("bob's flip was never cancelled by reset")
	}

	require.NoError(t, b.CheckInvariants())
}

func TestFlipFailuresPreserveInvariants(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Flip(context.Background(), "alice", 0, 0))
	_ = b.Flip(context.Background(), "alice", 0, 0) // CardAlreadyControlled, self-case
	require.NoError(t, b.CheckInvariants())
}
