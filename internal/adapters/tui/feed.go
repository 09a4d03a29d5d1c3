// Package tui renders scenario progress on an interactive terminal.
package tui

import (
	"io"
	"sync"

	"github.com/vito/progrock"
)

// FeedBufferSize is the number of updates held for the board.
const FeedBufferSize = 1024

// Feed is a progrock.Writer whose updates are read back in order by the board.
type Feed struct {
	updates chan *progrock.StatusUpdate

	mu     sync.RWMutex
	closed bool
}

// NewFeed creates an open feed.
func NewFeed() *Feed {
	return &Feed{updates: make(chan *progrock.StatusUpdate, FeedBufferSize)}
}

// WriteStatus queues an update. Updates written after Close, or while the
// board has stopped reading and the buffer is full, are dropped.
func (f *Feed) WriteStatus(update *progrock.StatusUpdate) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil
	}
	select {
	case f.updates <- update:
	default:
	}
	return nil
}

// Read returns the next update, or io.EOF once the feed is closed and drained.
func (f *Feed) Read() (*progrock.StatusUpdate, error) {
	update, ok := <-f.updates
	if !ok {
		return nil, io.EOF
	}
	return update, nil
}

// Close ends the feed.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.updates)
	}
	return nil
}
