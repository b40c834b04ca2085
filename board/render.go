package board

import (
	"fmt"
	"strings"
)

// View renders the board as seen by viewerID (spec §4.2):
//
//	<Rows>x<Cols>
//	<spot_{0,0}>
//	...
//	<spot_{Rows-1,Cols-1}>
//
// in row-major order, where each spot is one of "none", "down",
// "my <token>", or "up <token>".
func (b *Board) View(viewerID string) (string, error) {
	if blank(viewerID) {
		return "", badArgf("viewer id must not be blank")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderLocked(viewerID), nil
}

// renderLocked builds the rendering for viewerID. Caller must hold b.mu.
func (b *Board) renderLocked(viewerID string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d\n", b.rows, b.cols)
	for i := range b.cells {
		sb.WriteString(b.spotLocked(b.positionAt(i), viewerID))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Board) spotLocked(pos Position, viewerID string) string {
	c := b.cellAtLocked(pos)
	if !c.present {
		return "none"
	}
	if !c.up {
		return "down"
	}
	if ctrl, controlled := b.control[pos]; controlled {
		if ctrl == viewerID {
			return "my " + c.token
		}
		return "up " + c.token
	}
	return "up " + c.token
}
