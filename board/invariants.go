package board

import "fmt"

// CheckInvariants verifies representation invariants I1-I6 of spec §3 and
// returns a descriptive error on the first violation found, or nil if the
// board is consistent. It is exported for property-based and concurrency
// tests that drive arbitrary interleavings of public operations and want to
// assert the invariant holds after every completed operation; the Board
// does not call it on its own hot paths, the same way the Java checkRep
// idiom this is borrowed from is usually wired only into test builds.
func (b *Board) CheckInvariants() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checkInvariantsLocked()
}

func (b *Board) checkInvariantsLocked() error {
	// I1: dimensions positive and fixed. Fixed-ness is structural (no
	// method ever changes b.rows/b.cols after New); just check positive.
	if b.rows <= 0 || b.cols <= 0 {
		return fmt.Errorf("invariant I1 violated: dimensions %dx%d", b.rows, b.cols)
	}

	// I2: every present cell has a valid token; a removed cell is never
	// face-up and never controlled.
	for i, c := range b.cells {
		pos := b.positionAt(i)
		if !c.present {
			if c.up {
				return fmt.Errorf("invariant I2 violated: removed cell %v is face-up", pos)
			}
			if _, controlled := b.control[pos]; controlled {
				return fmt.Errorf("invariant I2 violated: removed cell %v is controlled", pos)
			}
			continue
		}
		if err := validateToken(c.token); err != nil {
			return fmt.Errorf("invariant I2 violated: cell %v has invalid token %q: %w", pos, c.token, err)
		}
	}

	// I3: every control entry refers to an in-bounds, present, face-up
	// cell, and to a known player whose state references it.
	for pos, pid := range b.control {
		if !b.inBounds(pos) {
			return fmt.Errorf("invariant I3 violated: control entry %v out of bounds", pos)
		}
		c := b.cellAtLocked(pos)
		if !c.present || !c.up {
			return fmt.Errorf("invariant I3 violated: control entry %v not present/face-up", pos)
		}
		p, known := b.players[pid]
		if !known {
			return fmt.Errorf("invariant I3 violated: control entry %v refers to unknown player %q", pos, pid)
		}
		referencesPos := (p.first != nil && *p.first == pos) || (p.second != nil && *p.second == pos)
		if !referencesPos {
			return fmt.Errorf("invariant I3 violated: player %q controls %v but does not reference it", pid, pos)
		}
	}

	// I4, I5, I6.
	for pid, p := range b.players {
		if p.second != nil && p.first == nil {
			return fmt.Errorf("invariant I4 violated: player %q has second but no first", pid)
		}
		if p.first != nil && p.second == nil {
			ctrl, controlled := b.control[*p.first]
			if !controlled || ctrl != pid {
				return fmt.Errorf("invariant I5 violated: player %q does not control their first %v", pid, *p.first)
			}
		}
		if p.first != nil && p.second != nil {
			if secondCtrl, ok := b.control[*p.second]; ok && secondCtrl == pid {
				firstCtrl, firstOK := b.control[*p.first]
				if !firstOK || firstCtrl != pid {
					return fmt.Errorf("invariant I6 violated: player %q controls second %v but not first %v", pid, *p.second, *p.first)
				}
			}
		}
	}

	return nil
}
