// Package telemetry turns scenario spans into OpenTelemetry spans and renderer events.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the default buffer size (4KB) if not specified.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the default flush interval (50ms) if not specified.
	DefaultTimeLimit = 50 * time.Millisecond
)

var errBatcherClosed = zerr.New("batch processor is closed")

// BatchProcessor buffers writes until a size limit or time limit is reached.
// It is safe for concurrent use.
type BatchProcessor struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer *bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewBatchProcessor returns a new BatchProcessor that hands buffered bytes to onFlush.
// Non-positive limits fall back to the defaults. Call Close to stop the background ticker.
func NewBatchProcessor(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *BatchProcessor {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	bp := &BatchProcessor{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		buffer:    new(bytes.Buffer),
		stopCh:    make(chan struct{}),
		ticker:    time.NewTicker(timeLimit),
	}
	go bp.run()

	return bp
}

// Write buffers p and flushes once the size limit is reached.
func (bp *BatchProcessor) Write(p []byte) (int, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return 0, errBatcherClosed
	}

	n, err := bp.buffer.Write(p)
	if err != nil {
		return n, err
	}

	if bp.buffer.Len() >= bp.sizeLimit {
		bp.flushLocked()
		bp.ticker.Reset(bp.timeLimit)
	}
	return n, nil
}

// Flush hands any buffered data to the callback.
func (bp *BatchProcessor) Flush() {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		return
	}
	bp.flushLocked()
}

// Close stops the background flusher and performs a final flush.
func (bp *BatchProcessor) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}
	bp.closed = true
	close(bp.stopCh)
	bp.flushLocked()
	return nil
}

func (bp *BatchProcessor) run() {
	for {
		select {
		case <-bp.ticker.C:
			bp.Flush()
		case <-bp.stopCh:
			bp.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held.
// The callback runs under the lock so flushes stay ordered; it must not block.
func (bp *BatchProcessor) flushLocked() {
	if bp.buffer.Len() == 0 {
		return
	}

	data := bytes.Clone(bp.buffer.Bytes())
	bp.buffer.Reset()

	if bp.onFlush != nil {
		bp.onFlush(data)
	}
}
