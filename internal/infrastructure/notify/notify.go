// Package notify holds the sinks session notifications are delivered to.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

// LogSink writes each notification as a structured log line.
type LogSink struct {
	log zerolog.Logger
}

var _ ports.Notifier = (*LogSink)(nil)

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, n domain.Notification) {
	ev := s.log.Info()
	if n.Variant == domain.VariantDestructive {
		ev = s.log.Warn()
	}
	ev.Str("title", n.Title).
		Str("description", n.Description).
		Str("variant", string(n.Variant)).
		Msg("notification")
}

const defaultFeedSize = 20

// Feed keeps the most recent notifications for the UI to poll.
type Feed struct {
	mu    sync.Mutex
	items []domain.Notification
	size  int
}

var _ ports.Notifier = (*Feed)(nil)

// NewFeed keeps at most size entries; size <= 0 uses a default.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &Feed{size: size}
}

func (f *Feed) Notify(_ context.Context, n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.size; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
}

// Recent returns the retained notifications, newest first.
func (f *Feed) Recent() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, len(f.items))
	for i, n := range f.items {
		out[len(f.items)-1-i] = n
	}
	return out
}
