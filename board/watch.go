package board

// WatchHandle is the awaiting side of a registered watcher. Receive from C
// to block until the next visible change; it is sent exactly one rendering
// and then closed. If the caller gives up before that happens, call Cancel
// to deregister cleanly instead of leaking the entry until the next visible
// change resolves it anyway.
type WatchHandle struct {
	b  *Board
	ch chan string
}

// C is the channel the next rendering (or nothing, if Cancel wins the race)
// will arrive on.
func (h *WatchHandle) C() <-chan string { return h.ch }

// Cancel deregisters this watcher if it has not yet been resolved. Safe to
// call unconditionally, including after the watcher already resolved.
func (h *WatchHandle) Cancel() {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	for i, w := range h.b.watchers {
		if w.ch == h.ch {
			h.b.watchers = append(h.b.watchers[:i], h.b.watchers[i+1:]...)
			return
		}
	}
}

// Watch registers a fresh one-shot watcher for viewerID and returns a handle
// whose channel resolves with viewerID's rendering on the next visible
// change (spec §4.5). Multiple concurrent watchers for the same viewerID are
// independent; each resolves once.
func (b *Board) Watch(viewerID string) (*WatchHandle, error) {
	if blank(viewerID) {
		return nil, badArgf("viewer id must not be blank")
	}
	ch := make(chan string, 1)
	b.mu.Lock()
	b.watchers = append(b.watchers, watchEntry{viewerID: viewerID, ch: ch})
	b.mu.Unlock()
	return &WatchHandle{b: b, ch: ch}, nil
}

// fanOutWatchers implements the snapshot-and-clear policy of spec §4.5: it
// atomically swaps out the whole watcher registry, then renders and
// resolves each one outside the monitor. Must be called without b.mu held.
func (b *Board) fanOutWatchers() {
	b.mu.Lock()
	if len(b.watchers) == 0 {
		b.mu.Unlock()
		return
	}
	pending := b.watchers
	b.watchers = nil
	b.mu.Unlock()

	b.deliverWatchers(pending)
}

// deliverWatchers renders and resolves each already-dequeued watcher. Must
// be called without b.mu held.
func (b *Board) deliverWatchers(pending []watchEntry) {
	for _, w := range pending {
		rendering, err := b.View(w.viewerID)
		if err != nil {
			// viewerID was validated at registration time; this
			// cannot happen, but resolve with an empty rendering
			// rather than leaving the watcher hanging forever.
			rendering = ""
		}
		select {
		case w.ch <- rendering:
		default:
		}
		close(w.ch)
	}
}
