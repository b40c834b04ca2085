package board

import "context"

// Flip implements the nine-case flip state machine of spec §4.3. ctx is
// consulted only while this call is blocked on rule 1-D (waiting for
// another player to release a controlled card); it has no other effect and
// carries no value into the Board's state. On cancellation the call removes
// its own waiter entry before returning ctx.Err(), per spec §5's
// cancellation-cleanup note.
func (b *Board) Flip(ctx context.Context, playerID string, row, col int) error {
	if blank(playerID) {
		return badArgf("player id must not be blank")
	}
	target := Position{Row: row, Col: col}

	b.mu.Lock()
	if !b.inBounds(target) {
		b.mu.Unlock()
		return badArgf("position %v is out of bounds for a %dx%d board", target, b.rows, b.cols)
	}

	p := b.playerLocked(playerID)
	m := &mutation{}

	// Stage A: cleanup of the previous completed turn.
	if p.second != nil {
		b.cleanupTurnLocked(playerID, p, target, m)
	}

	var opErr error
	if p.first == nil {
		// Stage B: first-card flip.
		opErr = b.flipFirstLocked(ctx, p, playerID, target, m)
	} else {
		// Stage C: second-card flip.
		opErr = b.flipSecondLocked(p, playerID, target, m)
	}

	b.mu.Unlock()

	b.resolveWaiters(m.released)
	if m.visible {
		b.fanOutWatchers()
	}

	return opErr
}

// cleanupTurnLocked runs stage A: resolving the player's previous two-card
// turn before starting a new one. Caller must hold b.mu.
func (b *Board) cleanupTurnLocked(playerID string, p *playerState, target Position, m *mutation) {
	f, s := *p.first, *p.second

	if f == s {
		// Degenerate: the previous second flip failed before taking a
		// real second position, leaving only the first tracked.
		if f != target {
			b.turnDownIfPossibleLocked(f, m)
		}
	} else {
		fCtrl, fOK := b.control[f]
		sCtrl, sOK := b.control[s]
		matched := fOK && fCtrl == playerID && sOK && sCtrl == playerID
		if matched {
			b.removeCardLocked(f, m)
			b.removeCardLocked(s, m)
		} else {
			if f != target {
				b.turnDownIfPossibleLocked(f, m)
			}
			if s != target {
				b.turnDownIfPossibleLocked(s, m)
			}
		}
	}

	p.first = nil
	p.second = nil
}

// flipFirstLocked runs stage B. Caller must hold b.mu on entry; holds it on
// every return, including error returns, but releases and re-acquires it
// internally while waiting on rule 1-D.
func (b *Board) flipFirstLocked(ctx context.Context, p *playerState, playerID string, target Position, m *mutation) error {
	for {
		c := b.cellAtLocked(target)
		if !c.present {
			return noCardAtf(target)
		}

		ctrl, controlled := b.control[target]
		if !controlled || ctrl == playerID {
			break
		}

		// Rule 1-D: someone else controls this card. Wait for it to be
		// released, with the monitor dropped across the wait.
		waitCh := make(chan error, 1)
		b.waiters[target] = append(b.waiters[target], waitCh)
		b.mu.Unlock()

		select {
		case werr := <-waitCh:
			b.mu.Lock()
			if werr != nil {
				return werr
			}
			// A Reset between this waiter's resolution and re-locking
			// replaces the player registry; use the current state.
			p = b.playerLocked(playerID)
			// Re-examine the predicate from the top of the loop.
		case <-ctx.Done():
			b.mu.Lock()
			b.removeWaiterLocked(target, waitCh)
			return ctx.Err()
		}
	}

	// Rule 1-B then 1-C.
	b.turnUpLocked(target, m)
	b.control[target] = playerID
	first := target
	p.first = &first
	return nil
}

// flipSecondLocked runs stage C. Caller must hold b.mu; never suspends.
func (b *Board) flipSecondLocked(p *playerState, playerID string, target Position, m *mutation) error {
	f := *p.first

	c := b.cellAtLocked(target)
	if !c.present {
		// Rule 2-A.
		b.releaseControlLocked(f, m)
		p.second = &f
		return noCardAtf(target)
	}

	if _, already := b.control[target]; already {
		// Rule 2-B, including the self-case target == f.
		b.releaseControlLocked(f, m)
		p.second = &f
		return alreadyControlledf(target)
	}

	// Rule 2-C.
	b.turnUpLocked(target, m)

	firstCell := b.cellAtLocked(f)
	match := firstCell.token == c.token
	second := target
	if match {
		// Rule 2-D.
		b.control[target] = playerID
		p.second = &second
	} else {
		// Rule 2-E.
		b.releaseControlLocked(f, m)
		p.second = &second
	}
	return nil
}

// resolveWaiters wakes every waiter queued on the given released positions.
// Must be called without b.mu held; it briefly re-acquires it to drain the
// waiter registry.
func (b *Board) resolveWaiters(released []Position) {
	if len(released) == 0 {
		return
	}
	b.mu.Lock()
	var toResolve []chan error
	for _, pos := range released {
		toResolve = append(toResolve, b.waiters[pos]...)
		delete(b.waiters, pos)
	}
	b.mu.Unlock()

	for _, ch := range toResolve {
		select {
		case ch <- nil:
		default:
			// Already abandoned by a cancelled waiter; a no-op
			// resolution is acceptable (spec §9).
		}
	}
}

// removeWaiterLocked deletes target from pos's waiter queue, if still
// present. Used to clean up after an external cancellation unblocks a
// waiting flip before its position was released. Caller must hold b.mu.
func (b *Board) removeWaiterLocked(pos Position, target chan error) {
	list := b.waiters[pos]
	for i, ch := range list {
		if ch == target {
			b.waiters[pos] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.waiters[pos]) == 0 {
		delete(b.waiters, pos)
	}
}
