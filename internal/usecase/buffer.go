package usecase

import (
	"sync"

	"cspwatch/internal/domain"
)

// ReportBuffer decouples the unauthenticated submission path from the
// analytical store's bulk write path. Appends and drains contend on one
// lock; an append that finds the lock held is dropped rather than
// queued, so ingestion latency stays bounded under a concurrent drain.
type ReportBuffer struct {
	mu    sync.Mutex
	items []domain.BufferedReport
}

func NewReportBuffer() *ReportBuffer {
	return &ReportBuffer{}
}

// TryAppend records rec unless the buffer lock is held. It never
// blocks; a false return means the report was lost, which the HTTP
// layer deliberately does not surface to the reporting browser.
func (b *ReportBuffer) TryAppend(rec domain.BufferedReport) bool {
	if !b.mu.TryLock() {
		return false
	}
	b.items = append(b.items, rec)
	b.mu.Unlock()
	return true
}

// Drain swaps the backing slice for an empty one and returns the
// previous contents in append order. It is the only way records leave
// the buffer; draining an already-empty buffer returns nil.
func (b *ReportBuffer) Drain() []domain.BufferedReport {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.mu.Unlock()
	return items
}
