package events

import (
	"context"
	"sync"

	"canteen/internal/domain"
)

// Recorder keeps published messages in memory. Err, when set, is returned from every call.
type Recorder struct {
	mu      sync.Mutex
	Err     error
	Placed  []domain.OrderPlacedEvent
	Changed []domain.StatusChangedEvent
	Notices []domain.Notice
}

func (r *Recorder) OrderPlaced(_ context.Context, ev domain.OrderPlacedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Placed = append(r.Placed, ev)
	return nil
}

func (r *Recorder) StatusChanged(_ context.Context, ev domain.StatusChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Changed = append(r.Changed, ev)
	return nil
}

func (r *Recorder) Notify(_ context.Context, n domain.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Notices = append(r.Notices, n)
	return nil
}

// LastNotice returns the most recent notice of the given kind.
func (r *Recorder) LastNotice(kind string) (domain.Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Notices) - 1; i >= 0; i-- {
		if r.Notices[i].Kind == kind {
			return r.Notices[i], true
		}
	}
	return domain.Notice{}, false
}
