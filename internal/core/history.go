package core

import "sync"

// importHistory keeps the most recent import results in memory, newest
// first. Failed imports are kept too, with ErrorCode set.
type importHistory struct {
	mu      sync.Mutex
	size    int
	entries []ImportResult
}

func newImportHistory(size int) *importHistory {
	return &importHistory{size: size}
}

// record adds r, dropping the oldest entry once the history is full.
// A zero size disables the history.
func (h *importHistory) record(r ImportResult) {
	if h.size <= 0 {
		return
	}
	r.UnknownHeaders = append([]string(nil), r.UnknownHeaders...)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, r)
	if over := len(h.entries) - h.size; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
}

// list returns a copy of the entries, newest first.
func (h *importHistory) list() []ImportResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]ImportResult, len(h.entries))
	for i, r := range h.entries {
		out[len(out)-1-i] = r
	}
	return out
}
