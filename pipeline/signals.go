// Package pipeline connects content processing steps. Items flow through
// listeners registered on a per run Signals value.
package pipeline

import (
	"context"
	"sync"

	"addcss/common"
)

// Content is a single item of site content being processed.
type Content struct {
	// Source is path relative to the processed root, used for logging,
	// reporting and to classify content.
	Source string
	Kind   common.ContentKind
	// Static items (images, fonts, etc.) pass through untouched.
	Static bool
	// Body is the HTML body of the item, listeners may replace it.
	Body string
}

// Listener is called for every initialized content item.
type Listener func(ctx context.Context, c *Content) error

// Signals keeps listeners for processing events. Zero value is ready to use,
// connecting listeners and emitting may happen concurrently.
type Signals struct {
	mu          sync.RWMutex
	initialized []Listener
}

// ConnectContentInitialized registers listener to be called when content
// item is ready for transformation.
func (s *Signals) ConnectContentInitialized(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = append(s.initialized, l)
}

// ContentInitialized calls connected listeners in order of registration and
// stops on the first error.
func (s *Signals) ContentInitialized(ctx context.Context, c *Content) error {
	s.mu.RLock()
	listeners := s.initialized
	s.mu.RUnlock()

	for _, l := range listeners {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
