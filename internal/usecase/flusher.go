package usecase

import (
	"context"
	"log/slog"
	"time"

	"cspwatch/internal/domain"
)

// ReportSink is the bulk write port into the analytical store.
type ReportSink interface {
	AppendBatch(ctx context.Context, batch []domain.BufferedReport) error
}

// Flusher drains the buffer on a fixed period and hands each non-empty
// batch to the sink as a single bulk append. A failed append drops the
// batch: there is no retry queue, and the next tick starts from an
// empty buffer either way, which caps memory growth at one tick's worth
// of traffic.
type Flusher struct {
	buf      *ReportBuffer
	sink     ReportSink
	interval time.Duration
	log      *slog.Logger
}

func NewFlusher(buf *ReportBuffer, sink ReportSink, interval time.Duration, log *slog.Logger) *Flusher {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Flusher{buf: buf, sink: sink, interval: interval, log: log}
}

// Run blocks until ctx is cancelled, flushing once per tick. It flushes
// one last time on the way out so a clean shutdown does not strand the
// final tick's reports.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			f.Flush(context.Background())
			return
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush executes one drain-and-append cycle.
func (f *Flusher) Flush(ctx context.Context) {
	batch := f.buf.Drain()
	if len(batch) == 0 {
		return
	}
	if err := f.sink.AppendBatch(ctx, batch); err != nil {
		f.log.Error("flush failed, batch dropped", "err", err, "dropped", len(batch))
		return
	}
	f.log.Debug("flushed report batch", "size", len(batch))
}
